package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefinitionStore implements ports.DefinitionStore using Redis.
// Definitions never expire. A ZSET scored by a sequence counter keeps creation order.
type DefinitionStore struct {
	client *backend.Client
	prefix string
}

// NewDefinitionStore creates a definition store on an existing client.
func NewDefinitionStore(client *backend.Client, prefix string) *DefinitionStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &DefinitionStore{client: client, prefix: prefix}
}

func (s *DefinitionStore) key(id string) string {
	return s.prefix + "definition:" + id
}

func (s *DefinitionStore) indexKey() string {
	return s.prefix + "definition-index"
}

func (s *DefinitionStore) seqKey() string {
	return s.prefix + "definition-seq"
}

// createScript indexes and stores a definition in one step. The sequence is
// incremented before anything is written, so a failing INCR or ZADD leaves no
// definition body behind.
var createScript = backend.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
local seq = redis.call("INCR", KEYS[2])
redis.call("ZADD", KEYS[3], seq, ARGV[1])
redis.call("SET", KEYS[1], ARGV[2])
return 1
`)

// Create stores the definition unless its ID is taken.
func (s *DefinitionStore) Create(ctx context.Context, summary domain.DefinitionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	keys := []string{s.key(summary.ID), s.seqKey(), s.indexKey()}
	created, err := createScript.Run(ctx, s.client, keys, summary.ID, data).Int()
	if err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	if created == 0 {
		return domain.ErrDefinitionExists
	}
	return nil
}

// Get returns the stored definition.
func (s *DefinitionStore) Get(ctx context.Context, id string) (domain.DefinitionSummary, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.DefinitionSummary{}, domain.ErrDefinitionNotFound
		}
		return domain.DefinitionSummary{}, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decodeDefinition(val)
}

// List returns every definition in creation order.
func (s *DefinitionStore) List(ctx context.Context) ([]domain.DefinitionSummary, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}
	if len(ids) == 0 {
		return []domain.DefinitionSummary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}

	out := make([]domain.DefinitionSummary, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Indexed but missing; skip rather than fail the listing.
			continue
		}
		summary, err := decodeDefinition([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("definition %s: %w", ids[i], err)
		}
		out = append(out, summary)
	}
	return out, nil
}

func decodeDefinition(data []byte) (domain.DefinitionSummary, error) {
	var summary domain.DefinitionSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return domain.DefinitionSummary{}, fmt.Errorf("failed to unmarshal definition: %w", err)
	}
	return summary, nil
}
