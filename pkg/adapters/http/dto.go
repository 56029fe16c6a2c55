package http

import (
	"github.com/aretw0/turing/pkg/domain"
)

// TapeRequest carries an initial tape. TapeSymbols wins over Tape when set.
type TapeRequest struct {
	Tape        string   `json:"tape"`
	TapeSymbols []string `json:"tape_symbols,omitempty"`
}

// Symbols returns the tape as a symbol sequence.
func (r TapeRequest) Symbols() []string {
	if r.TapeSymbols != nil {
		return r.TapeSymbols
	}
	return domain.SplitTape(r.Tape)
}

// OpenRequest is the body of POST /sessions.
type OpenRequest struct {
	DefinitionID string `json:"definition_id"`
	TapeRequest
}

// RunRequest is the body of POST /sessions/{id}/run.
type RunRequest struct {
	MaxSteps int `json:"max_steps"`
}

// CreatedResponse acknowledges a stored definition.
type CreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// OpenedResponse answers POST /sessions.
type OpenedResponse struct {
	InstanceID string                   `json:"instance_id"`
	State      domain.Snapshot          `json:"state"`
	Definition domain.DefinitionSummary `json:"definition"`
}

// SessionResponse answers GET /sessions/{id}.
type SessionResponse struct {
	InstanceID   string          `json:"instance_id"`
	DefinitionID string          `json:"definition_id"`
	State        domain.Snapshot `json:"state"`
}

// StepResponse answers POST /sessions/{id}/step.
type StepResponse struct {
	State   domain.Snapshot    `json:"state"`
	Applied bool               `json:"applied"`
	Step    *domain.StepRecord `json:"step,omitempty"`
}

// RunResponse answers POST /sessions/{id}/run.
type RunResponse struct {
	State   domain.Snapshot     `json:"state"`
	Applied int                 `json:"applied"`
	History []domain.StepRecord `json:"history,omitempty"`
}

// StateResponse wraps a bare snapshot.
type StateResponse struct {
	State domain.Snapshot `json:"state"`
}

// HistoryResponse answers GET /sessions/{id}/history.
type HistoryResponse struct {
	Records []domain.StepRecord `json:"records"`
}

// ErrorResponse is the body of every failed request. Rule, Field and Value
// are set for validation failures only.
type ErrorResponse struct {
	Error string `json:"error"`
	Rule  string `json:"rule,omitempty"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}
