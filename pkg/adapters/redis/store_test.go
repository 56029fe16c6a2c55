package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newInstance(id string) *domain.Instance {
	def := domain.NewDefinition(ports.ContractDefinition("increment"))
	return domain.NewInstance(id, def, []string{"1"})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunInstanceStoreContract(t, redis.NewFromClient(client))
}

func TestRedisDefinitionStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunDefinitionStoreContract(t, redis.NewDefinitionStore(client, ""))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	id := "instance-ttl"

	require.NoError(t, store.Save(ctx, newInstance(id)))

	ids, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, ids, id)

	// Key expiration in miniredis is driven by FastForward.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInstanceNotFound)

	// Index pruning compares against the wall clock.
	time.Sleep(1200 * time.Millisecond)

	ids, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newInstance("my-instance")))

	assert.True(t, mr.Exists("custom:app:instance:my-instance"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:instance-index"), "Expected index with custom prefix to exist")

	ids, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, ids, "my-instance")
}

func TestRedisDefinitionStore_NoExpiry(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewDefinitionStore(client, "p:")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, ports.ContractDefinition("inc")))
	assert.True(t, mr.Exists("p:definition:inc"))
	assert.Equal(t, time.Duration(0), mr.TTL("p:definition:inc"))

	empty := redis.NewDefinitionStore(client, "other:")
	all, err := empty.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisDefinitionStore_CreateIsAllOrNothing(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewDefinitionStore(client, "p:")
	ctx := context.Background()

	// A corrupt sequence makes INCR fail inside the create script.
	require.NoError(t, mr.Set("p:definition-seq", "not-a-number"))
	err := store.Create(ctx, ports.ContractDefinition("d1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDefinitionExists)

	assert.False(t, mr.Exists("p:definition:d1"))
	_, err = store.Get(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)

	mr.Del("p:definition-seq")
	require.NoError(t, store.Create(ctx, ports.ContractDefinition("d1")))
	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "d1", all[0].ID)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.NewClient("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())

	_, err = redis.NewClient("http://nope")
	assert.Error(t, err)
}
