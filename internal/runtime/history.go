package runtime

import "github.com/aretw0/turing/pkg/domain"

// appendHistory appends rec and, with a positive limit, trims the slice back to
// the newest limit records once it has grown to twice that size. Use
// RetainedHistory to read exactly the retained window.
func appendHistory(h []domain.StepRecord, rec domain.StepRecord, limit int) []domain.StepRecord {
	h = append(h, rec)
	if limit > 0 && len(h) >= 2*limit {
		n := copy(h, h[len(h)-limit:])
		clear(h[n:])
		h = h[:n]
	}
	return h
}

// RetainedHistory returns the newest limit records (all of them when limit is 0).
func RetainedHistory(h []domain.StepRecord, limit int) []domain.StepRecord {
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]domain.StepRecord, len(h))
	copy(out, h)
	return out
}
