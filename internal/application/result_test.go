package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResultSuccess(t *testing.T) {
	t.Parallel()

	report := domain.UsageReport{Summary: domain.UsageSummary{BillCount: 2}}

	result := NewResult(report, nil)
	assert.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, 2, result.Data.Summary.BillCount)
	assert.Empty(t, result.Error)
	assert.Empty(t, result.Stage)
}

func TestNewResultFailures(t *testing.T) {
	t.Parallel()

	diagnostic := &domain.ShapeDiagnostic{HasData: true}
	testCases := []struct {
		name string
		err  error
		want Result
	}{
		{
			name: "auth",
			err:  &domain.AuthError{Reason: "token not found", DebugSample: map[string]string{"k": "v"}, Err: domain.ErrTokenNotFound},
			want: Result{Error: "authenticate: token not found", Stage: domain.StageAuthenticate, Debug: map[string]string{"k": "v"}},
		},
		{
			name: "resolve",
			err:  &domain.ResolveError{Status: 401, Body: "denied"},
			want: Result{Error: "resolve customer: HTTP 401", Stage: domain.StageResolve, Status: 401, Details: "denied"},
		},
		{
			name: "query wrapped",
			err:  fmt.Errorf("run: %w", &domain.QueryError{Status: 500, Body: "oops"}),
			want: Result{Error: "run: fetch bills: HTTP 500", Stage: domain.StageFetchBills, Status: 500, Details: "oops"},
		},
		{
			name: "aggregate",
			err:  &domain.AggregateError{Reason: "no bills", Diagnostic: diagnostic, Err: domain.ErrNoBills},
			want: Result{Error: "aggregate usage: no bills", Stage: domain.StageAggregate, Diagnostic: diagnostic},
		},
		{
			name: "untyped",
			err:  errors.New("context canceled"),
			want: Result{Error: "context canceled"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewResult(domain.UsageReport{}, tc.err))
		})
	}
}

func TestResultJSONShape(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewResult(domain.UsageReport{}, &domain.QueryError{Status: 502, Body: "bad gateway"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"fetch bills: HTTP 502","stage":"fetch_bills","status":502,"details":"bad gateway"}`, string(data))

	data, err = json.Marshal(NewResult(domain.UsageReport{Summary: domain.UsageSummary{BillCount: 1, UsageUnit: "therms", CostUnit: "USD"}}, nil))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Contains(t, decoded["data"], "current_month_estimate")
	assert.NotContains(t, decoded, "error")
}
