package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillJSON = `{
  "name": "fill",
  "states": ["A", "B"],
  "input_alphabet": ["0", "1"],
  "tape_alphabet": ["0", "1", "␣"],
  "blank": "␣",
  "initial_state": "A",
  "final_states": ["B"],
  "transitions": [
    {"current_state": "A", "read_symbol": "0", "next_state": "A", "write_symbol": "1", "move": "Right"},
    {"current_state": "A", "read_symbol": "␣", "next_state": "B", "write_symbol": "␣", "move": "Right"}
  ]
}`

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	return NewHandler(turing.New(), opts...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createFill(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/definitions", fillJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[CreatedResponse](t, w).ID
}

func openFill(t *testing.T, h http.Handler, defID, tape string) string {
	t.Helper()
	body, _ := json.Marshal(OpenRequest{DefinitionID: defID, TapeRequest: TapeRequest{Tape: tape}})
	w := do(t, h, http.MethodPost, "/sessions", string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[OpenedResponse](t, w).InstanceID
}

func TestServiceEndpoints(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, "turing-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, strings.TrimSpace(turing.Version), info["version"])

	w = do(t, h, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodOptions, "/sessions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsHandler(t *testing.T) {
	h := newTestHandler(t, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("turing_steps_total 0\n"))
	})))
	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "turing_steps_total")
}

func TestDefinitions(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/definitions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	id := createFill(t, h)

	w = do(t, h, http.MethodGet, "/definitions", "")
	assert.JSONEq(t, `[{"id":"`+id+`","name":"fill"}]`, w.Body.String())

	w = do(t, h, http.MethodGet, "/definitions/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody[domain.DefinitionSummary](t, w)
	assert.Equal(t, "␣", summary.Blank)
	assert.Equal(t, domain.MoveRight, summary.Transitions[1].Move)

	w = do(t, h, http.MethodGet, "/definitions/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDefinition_Errors(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/definitions", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var spec schema.DefinitionSpec
	require.NoError(t, json.Unmarshal([]byte(fillJSON), &spec))
	spec.Transitions[0].NextState = "C"
	body, _ := json.Marshal(spec)

	w = do(t, h, http.MethodPost, "/definitions", string(body))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeBody[ErrorResponse](t, w)
	assert.Equal(t, string(schema.RuleTransitionField), resp.Rule)
	assert.Equal(t, "transitions[0].next_state", resp.Field)
	assert.Equal(t, "C", resp.Value)
	assert.NotEmpty(t, resp.Error)

	w = do(t, h, http.MethodGet, "/definitions", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestHandler(t)
	defID := createFill(t, h)

	body, _ := json.Marshal(OpenRequest{DefinitionID: defID, TapeRequest: TapeRequest{Tape: "000"}})
	w := do(t, h, http.MethodPost, "/sessions", string(body))
	require.Equal(t, http.StatusCreated, w.Code)
	opened := decodeBody[OpenedResponse](t, w)
	assert.Equal(t, "A", opened.State.CurrentState)
	assert.Equal(t, []string{"0", "0", "0"}, opened.State.Tape)
	assert.Equal(t, defID, opened.Definition.ID)
	id := opened.InstanceID

	w = do(t, h, http.MethodGet, "/sessions", "")
	assert.JSONEq(t, `["`+id+`"]`, w.Body.String())

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/step", "")
	require.Equal(t, http.StatusOK, w.Code)
	step := decodeBody[StepResponse](t, w)
	assert.True(t, step.Applied)
	assert.Equal(t, 1, step.State.Steps)
	require.NotNil(t, step.Step)
	assert.Equal(t, "1", step.Step.Written)

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/step?history=false", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeBody[StepResponse](t, w).Step)

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/step?history=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/run", `{"max_steps": 10}`)
	require.Equal(t, http.StatusOK, w.Code)
	run := decodeBody[RunResponse](t, w)
	assert.Equal(t, 2, run.Applied)
	assert.Len(t, run.History, 2)
	assert.Equal(t, "B", run.State.CurrentState)
	assert.Equal(t, 4, run.State.Steps)
	assert.True(t, run.State.Halted)

	w = do(t, h, http.MethodGet, "/sessions/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody[SessionResponse](t, w)
	assert.Equal(t, defID, view.DefinitionID)
	assert.True(t, view.State.Halted)

	w = do(t, h, http.MethodGet, "/sessions/"+id+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[HistoryResponse](t, w).Records, 4)

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/reset", `{"tape_symbols": ["1", "0"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decodeBody[StateResponse](t, w)
	assert.Equal(t, 0, reset.State.Steps)
	assert.Equal(t, []string{"1", "0"}, reset.State.Tape)

	w = do(t, h, http.MethodGet, "/sessions/"+id+"/history", "")
	assert.JSONEq(t, `{"records":[]}`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionErrors(t *testing.T) {
	h := newTestHandler(t)
	defID := createFill(t, h)

	body, _ := json.Marshal(OpenRequest{DefinitionID: defID, TapeRequest: TapeRequest{Tape: "020"}})
	w := do(t, h, http.MethodPost, "/sessions", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, w).Error, `"2"`)

	body, _ = json.Marshal(OpenRequest{DefinitionID: "missing"})
	w = do(t, h, http.MethodPost, "/sessions", string(body))
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := openFill(t, h, defID, "0")
	w = do(t, h, http.MethodPost, "/sessions/"+id+"/run", `{"max_steps": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/reset", `{"tape": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, path := range []string{"/sessions/nope/step", "/sessions/nope/reset"} {
		w = do(t, h, http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w = do(t, h, http.MethodPost, "/sessions/nope/run", `{"max_steps": 1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodGet, "/sessions/nope/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodDelete, "/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodGet, "/sessions/nope/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDefinitionGraph(t *testing.T) {
	h := newTestHandler(t)
	defID := createFill(t, h)

	w := do(t, h, http.MethodGet, "/definitions/"+defID+"/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "stateDiagram-v2"))
	assert.NotContains(t, w.Body.String(), "class ")

	id := openFill(t, h, defID, "0")
	do(t, h, http.MethodPost, "/sessions/"+id+"/run", `{"max_steps": 10}`)

	w = do(t, h, http.MethodGet, "/definitions/"+defID+"/graph?session="+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class s0 visited")
	assert.Contains(t, w.Body.String(), "class s1 current")

	w = do(t, h, http.MethodGet, "/definitions/"+defID+"/graph?session=nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	h := newTestHandler(t)
	defID := createFill(t, h)
	id := openFill(t, h, defID, "00")

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	readUntil := func(substr string) string {
		t.Helper()
		for {
			line, err := lines.ReadString('\n')
			require.NoError(t, err)
			if strings.Contains(line, substr) {
				return line
			}
		}
	}

	readUntil("data: connected")
	initial := readUntil("data: ")
	assert.Contains(t, initial, `"steps":0`)

	post := func(path string) {
		res, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(nil))
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
	post("/sessions/" + id + "/step")
	assert.Contains(t, readUntil("data: "), `"steps":1`)

	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+id, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	readUntil("event: closed")
}

func TestRun_PublishesHaltWithoutTransitions(t *testing.T) {
	server := &Server{Service: turing.New(), logger: logging.NewNop()}
	server.Streams = NewStreamManager(server.logger)
	h := server.Routes()

	defID := createFill(t, h)
	id := openFill(t, h, defID, "00")
	for range 3 {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/sessions/"+id+"/step", "").Code)
	}

	events, unsubscribe := server.Streams.Subscribe(id)
	defer unsubscribe()

	w := do(t, h, http.MethodPost, "/sessions/"+id+"/run", `{"max_steps": 5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeBody[RunResponse](t, w)
	assert.Equal(t, 0, out.Applied)
	assert.True(t, out.State.Halted)

	select {
	case ev := <-events:
		assert.Equal(t, "snapshot", ev.Name)
		assert.Contains(t, ev.Data, `"halted":true`)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published for the halting run")
	}
}
