package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService_Memory(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	svc, closer, err := NewService(config.Default(), logging.NewNop(), reg)
	require.NoError(t, err)
	defer closer()

	spec, err := compiler.ParseFile("testdata/fill.tm")
	require.NoError(t, err)
	def, err := svc.CreateDefinition(ctx, spec)
	require.NoError(t, err)
	opened, err := svc.Open(ctx, def.ID(), "00")
	require.NoError(t, err)
	_, err = svc.Run(ctx, opened.InstanceID, 10)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "turing_steps_total", "turing_halts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewService_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.Redis.Prefix = "test:"

	svc, closer, err := NewService(cfg, logging.NewNop(), nil)
	require.NoError(t, err)

	spec, err := compiler.ParseFile("testdata/fill.tm")
	require.NoError(t, err)
	_, err = svc.PutDefinition(ctx, "fill", spec)
	require.NoError(t, err)
	opened, err := svc.Open(ctx, "fill", "0")
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:definition:fill"))
	assert.True(t, mr.Exists("test:instance:"+opened.InstanceID))
	require.NoError(t, closer())

	// A second process sharing the store sees the same state.
	other, closeOther, err := NewService(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	defer closeOther()
	out, err := other.Step(ctx, opened.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Snapshot.Steps)
	assert.False(t, mr.Exists("test:lock:"+opened.InstanceID))
}

func TestNewService_RedisEncrypted(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.Redis.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))

	svc, closer, err := NewService(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	defer closer()

	spec, err := compiler.ParseFile("testdata/fill.tm")
	require.NoError(t, err)
	_, err = svc.PutDefinition(ctx, "fill", spec)
	require.NoError(t, err)
	opened, err := svc.Open(ctx, "fill", "00")
	require.NoError(t, err)
	out, err := svc.Run(ctx, opened.InstanceID, 10)
	require.NoError(t, err)
	assert.True(t, out.Snapshot.Halted)

	raw, err := mr.Get("turing:instance:" + opened.InstanceID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"sealed"`)
	assert.NotContains(t, raw, `"current_state":"B"`)
}

func TestNewService_BadRedisURL(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.URL = "not-a-url://"
	_, _, err := NewService(cfg, logging.NewNop(), nil)
	assert.Error(t, err)
}
