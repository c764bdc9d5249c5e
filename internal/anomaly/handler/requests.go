package handler

import (
	dErrors "chronoledger/pkg/domain-errors"
)

// ReportAnomalyRequest is the body of POST /anomalies.
type ReportAnomalyRequest struct {
	Description string `json:"description"`
	Severity    *int64 `json:"severity"`
}

// Validate implements httputil.Validatable.
func (r *ReportAnomalyRequest) Validate() error {
	if r.Severity == nil {
		return dErrors.New(dErrors.CodeBadRequest, "severity is required")
	}
	return nil
}

// ProposeResolutionRequest is the body of POST /anomalies/{id}/resolutions.
type ProposeResolutionRequest struct {
	Description string `json:"description"`
}
