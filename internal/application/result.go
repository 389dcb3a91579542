package application

import (
	"errors"

	"github.com/bnema/ngmetro/internal/domain"
)

// Result is the structured outcome of a run as reported to callers. It
// always carries Success; failure fields are only set on failure.
type Result struct {
	Success    bool                    `json:"success"`
	Data       *domain.UsageReport     `json:"data,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Stage      domain.Stage            `json:"stage,omitempty"`
	Status     int                     `json:"status,omitempty"`
	Details    string                  `json:"details,omitempty"`
	Debug      map[string]string       `json:"debug,omitempty"`
	Diagnostic *domain.ShapeDiagnostic `json:"diagnostic,omitempty"`
}

func NewResult(report domain.UsageReport, err error) Result {
	if err == nil {
		return Result{Success: true, Data: &report}
	}

	result := Result{Error: err.Error(), Stage: domain.StageOf(err)}

	var authErr *domain.AuthError
	var resolveErr *domain.ResolveError
	var queryErr *domain.QueryError
	var aggregateErr *domain.AggregateError

	switch {
	case errors.As(err, &authErr):
		result.Debug = authErr.DebugSample
	case errors.As(err, &resolveErr):
		result.Status = resolveErr.Status
		result.Details = resolveErr.Body
	case errors.As(err, &queryErr):
		result.Status = queryErr.Status
		result.Details = queryErr.Body
	case errors.As(err, &aggregateErr):
		result.Diagnostic = aggregateErr.Diagnostic
	}

	return result
}
