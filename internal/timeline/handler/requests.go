package handler

import (
	dErrors "chronoledger/pkg/domain-errors"
)

// CreateTimelineRequest is the body of POST /timelines. Both fields are stored
// as given; empty values are accepted.
type CreateTimelineRequest struct {
	Description  string `json:"description"`
	InitialState string `json:"initial_state"`
}

// UpdateStateRequest is the body of PUT /timelines/{id}/state.
type UpdateStateRequest struct {
	State string `json:"state"`
}

// EvaluateConsistencyRequest is the body of POST /timelines/{id}/consistency.
type EvaluateConsistencyRequest struct {
	Score *int64 `json:"score"`
}

// Validate implements httputil.Validatable.
func (r *EvaluateConsistencyRequest) Validate() error {
	if r.Score == nil {
		return dErrors.New(dErrors.CodeBadRequest, "score is required")
	}
	return nil
}
