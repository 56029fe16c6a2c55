package cli

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flipYAML = `name: Flip
states: [go]
input_alphabet: [a, b]
tape_alphabet: [a, b, _]
blank: _
initial_state: go
final_states: []
transitions:
  - [go, a, go, b, R]
  - [go, b, go, a, R]
`

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServe(t *testing.T) {
	dir, _ := testutils.SetupTestRepo(t, loam.WithVersioning(false))
	testutils.WriteFiles(t, dir, map[string]string{"flip.yaml": flipYAML})

	cfg := config.Default()
	cfg.Listen = "127.0.0.1:0"
	cfg.MachinesDir = dir

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, cfg, logging.NewNop(), ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	base := "http://" + addr

	code, body := get(t, base+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "ok")

	code, body = get(t, base+"/definitions/flip")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"name":"Flip"`)

	code, body = get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "turing_sessions_opened_total")
	assert.Contains(t, body, "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_MetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = "127.0.0.1:0"
	cfg.Metrics = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, cfg, logging.NewNop(), ready) }()

	addr := <-ready
	code, _ := get(t, "http://"+addr+"/metrics")
	assert.Equal(t, http.StatusNotFound, code)

	cancel()
	assert.NoError(t, <-done)
}

func TestServe_BadListen(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = "256.0.0.1:bad"
	err := Serve(context.Background(), cfg, logging.NewNop(), nil)
	assert.Error(t, err)
}
