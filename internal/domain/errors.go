package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCacheNotFound       = errors.New("token cache not found")
	ErrCustomerURNMissing  = errors.New("customer URN not available")
	ErrCredentialsMissing  = errors.New("missing credentials")
	ErrTokenNotFound       = errors.New("token not found")
	ErrUnexpectedPayload   = errors.New("unexpected customer data format")
	ErrNoBills             = errors.New("no bills")
	ErrTokenMalformed      = errors.New("token is not a three-segment bearer token")
	ErrTokenMissingExpiry  = errors.New("token has no exp claim")
	ErrAuthenticatorAbsent = errors.New("no authenticator configured")
)

// Stage names a pipeline step; it is reported with every terminal error.
type Stage string

const (
	StageCache        Stage = "cache"
	StageAuthenticate Stage = "authenticate"
	StageResolve      Stage = "resolve_customer"
	StageFetchBills   Stage = "fetch_bills"
	StageAggregate    Stage = "aggregate"
)

// StageError is implemented by every typed pipeline error.
type StageError interface {
	error
	Stage() Stage
}

// StageOf returns the stage of the first StageError in err's chain, or ""
// when there is none.
func StageOf(err error) Stage {
	var stageErr StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage()
	}
	return ""
}

// CacheReadError is recovered inside the token cache and never returned by Load.
type CacheReadError struct {
	Path string
	Err  error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("read token cache %q: %v", e.Path, e.Err)
}

func (e *CacheReadError) Unwrap() error { return e.Err }
func (e *CacheReadError) Stage() Stage  { return StageCache }

type CacheWriteError struct {
	Path string
	Err  error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("write token cache %q: %v", e.Path, e.Err)
}

func (e *CacheWriteError) Unwrap() error { return e.Err }
func (e *CacheWriteError) Stage() Stage  { return StageCache }

type TokenDecodeError struct {
	Err error
}

func (e *TokenDecodeError) Error() string {
	return fmt.Sprintf("decode bearer token: %v", e.Err)
}

func (e *TokenDecodeError) Unwrap() error { return e.Err }
func (e *TokenDecodeError) Stage() Stage  { return StageCache }

type AuthError struct {
	Reason      string
	DebugSample map[string]string
	Err         error
}

func (e *AuthError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Reason {
		return fmt.Sprintf("authenticate: %s: %v", e.Reason, e.Err)
	}
	return "authenticate: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }
func (e *AuthError) Stage() Stage  { return StageAuthenticate }

type ResolveError struct {
	Status int
	Body   string
	Reason string
	Err    error
}

func (e *ResolveError) Error() string {
	return "resolve customer: " + describeHTTPFailure(e.Status, e.Reason, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
func (e *ResolveError) Stage() Stage  { return StageResolve }

type QueryError struct {
	Status int
	Body   string
	Reason string
	Err    error
}

func (e *QueryError) Error() string {
	return "fetch bills: " + describeHTTPFailure(e.Status, e.Reason, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
func (e *QueryError) Stage() Stage  { return StageFetchBills }

// ShapeDiagnostic summarises a bills payload without echoing it back.
type ShapeDiagnostic struct {
	HasData           bool `json:"has_data"`
	HasBillingAccount bool `json:"has_billing_account"`
	BillsCount        int  `json:"bills_count"`
	GraphQLErrors     int  `json:"graphql_errors"`
}

type AggregateError struct {
	Reason     string
	Diagnostic *ShapeDiagnostic
	Err        error
}

func (e *AggregateError) Error() string {
	return "aggregate usage: " + e.Reason
}

func (e *AggregateError) Unwrap() error { return e.Err }
func (e *AggregateError) Stage() Stage  { return StageAggregate }

func describeHTTPFailure(status int, reason string, err error) string {
	switch {
	case status != 0 && reason != "":
		return fmt.Sprintf("HTTP %d: %s", status, reason)
	case status != 0:
		return fmt.Sprintf("HTTP %d", status)
	case reason != "" && err != nil && err.Error() != reason:
		return fmt.Sprintf("%s: %v", reason, err)
	case reason != "":
		return reason
	case err != nil:
		return err.Error()
	default:
		return "unknown failure"
	}
}
