package domain_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	cases := map[string]domain.Move{
		"L": domain.MoveLeft, "l": domain.MoveLeft, "Left": domain.MoveLeft, " LEFT ": domain.MoveLeft,
		"R": domain.MoveRight, "r": domain.MoveRight, "right": domain.MoveRight,
	}
	for in, want := range cases {
		got, err := domain.ParseMove(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseMove("S")
	assert.Error(t, err)
	_, err = domain.ParseMove("")
	assert.Error(t, err)
}

func TestMove_JSON(t *testing.T) {
	tr := domain.Transition{State: "A", Read: "0", Next: "B", Write: "1", Move: domain.MoveLeft}
	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"current_state":"A","read_symbol":"0","next_state":"B","write_symbol":"1","move":"L"}`, string(data))

	var back domain.Transition
	require.NoError(t, json.Unmarshal([]byte(`{"current_state":"A","read_symbol":"0","next_state":"B","write_symbol":"1","move":"Right"}`), &back))
	assert.Equal(t, domain.MoveRight, back.Move)
	assert.Equal(t, 1, back.Move.Delta())

	assert.Error(t, json.Unmarshal([]byte(`{"move":"up"}`), &back))
}

func TestInputError(t *testing.T) {
	var err error = &domain.InputError{Position: 2, Symbol: "2"}
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), `"2"`)

	assert.True(t, errors.Is(domain.InvalidInputf("max_steps must be positive, got %d", 0), domain.ErrInvalidInput))
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnStep: func(context.Context, *domain.StepEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnStep: func(context.Context, *domain.StepEvent) { calls = append(calls, "b") },
		OnHalt: func(context.Context, *domain.HaltEvent) { calls = append(calls, "halt") },
	}

	merged := domain.MergeHooks(a, domain.LifecycleHooks{}, b)
	merged.OnStep(context.Background(), &domain.StepEvent{})
	merged.OnHalt(context.Background(), &domain.HaltEvent{})

	assert.Equal(t, []string{"a", "b", "halt"}, calls)
	assert.Nil(t, merged.OnReset)
}
