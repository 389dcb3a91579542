package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
	"github.com/bnema/ngmetro/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testURN = domain.CustomerURN("urn:opower:customer:uuid:abc-123")

var testCreds = ports.Credentials{Username: "user@example.com", Password: "hunter2"}

type pipelineMocks struct {
	store    *mocks.MockTokenStore
	auth     *mocks.MockAuthenticator
	resolver *mocks.MockCustomerResolver
	usage    *mocks.MockUsageClient
	recorder *recordingRecorder
}

func newTestPipeline(t *testing.T) (*Pipeline, pipelineMocks) {
	t.Helper()

	m := pipelineMocks{
		store:    mocks.NewMockTokenStore(t),
		auth:     mocks.NewMockAuthenticator(t),
		resolver: mocks.NewMockCustomerResolver(t),
		usage:    mocks.NewMockUsageClient(t),
		recorder: &recordingRecorder{},
	}

	pipeline := NewPipeline(PipelineDeps{
		Store:         m.store,
		Authenticator: m.auth,
		Resolver:      m.resolver,
		Usage:         m.usage,
		Clock:         ports.ClockFunc(func() time.Time { return time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC) }),
		Location:      time.UTC,
		Recorder:      m.recorder,
		Logger:        zerolog.Nop(),
	})

	return pipeline, m
}

func juneBills() domain.BillsResponse {
	return billsResponse(thermBill(juneInterval, 50, 40, 5))
}

func mockAnyContext() interface{} {
	return mock.Anything
}

type recordingRecorder struct {
	mu      sync.Mutex
	cache   []domain.CacheStatus
	stages  []domain.Stage
	failed  []domain.Stage
	reauths int
	runs    int
	runErr  error
}

func (r *recordingRecorder) CacheLoaded(status domain.CacheStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = append(r.cache, status)
}

func (r *recordingRecorder) StageCompleted(stage domain.Stage, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
	if err != nil {
		r.failed = append(r.failed, stage)
	}
}

func (r *recordingRecorder) Reauthenticated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reauths++
}

func (r *recordingRecorder) RunCompleted(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	r.runErr = err
}

func TestPipelineUsesCachedSessionWithURN(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{Token: "cached", CustomerURN: testURN}, domain.CacheHit)
	m.usage.EXPECT().FetchBills(mockAnyContext(), "cached", testURN).Return(juneBills(), nil)

	report, err := pipeline.Run(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.BillCount)
	assert.Equal(t, 45.0, report.Summary.TotalCost)
	require.NotNil(t, report.CurrentEstimate)
	assert.True(t, report.CurrentEstimate.IsCurrentPeriod)

	assert.Equal(t, []domain.CacheStatus{domain.CacheHit}, m.recorder.cache)
	assert.Equal(t, []domain.Stage{domain.StageCache, domain.StageFetchBills, domain.StageAggregate}, m.recorder.stages)
	assert.Equal(t, 1, m.recorder.runs)
	assert.NoError(t, m.recorder.runErr)
}

func TestPipelineResolvesAndPersistsMissingURN(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{Token: "cached"}, domain.CacheHit)
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "cached").Return(testURN, nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "cached", testURN).Return(nil).Once()
	m.usage.EXPECT().FetchBills(mockAnyContext(), "cached", testURN).Return(juneBills(), nil)

	_, err := pipeline.Run(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Zero(t, m.recorder.reauths)
}

func TestPipelineFreshLoginOnCacheMiss(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheExpired)
	m.auth.EXPECT().Authenticate(mockAnyContext(), testCreds.Username, testCreds.Password).Return("fresh", nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", domain.CustomerURN("")).Return(nil).Once()
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "fresh").Return(testURN, nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", testURN).Return(nil).Once()
	m.usage.EXPECT().FetchBills(mockAnyContext(), "fresh", testURN).Return(juneBills(), nil)

	report, err := pipeline.Run(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Len(t, report.UsageOverTime, 1)
	assert.Equal(t, []domain.CacheStatus{domain.CacheExpired}, m.recorder.cache)
}

func TestPipelineReauthenticatesOnceWhenCachedTokenRejected(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{Token: "stale"}, domain.CacheHit)
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "stale").
		Return(domain.CustomerURN(""), &domain.ResolveError{Status: 401, Body: "expired"}).Once()
	m.store.EXPECT().Clear(mockAnyContext()).Return(nil).Once()
	m.auth.EXPECT().Authenticate(mockAnyContext(), testCreds.Username, testCreds.Password).Return("fresh", nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", domain.CustomerURN("")).Return(nil).Once()
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "fresh").Return(testURN, nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", testURN).Return(nil).Once()
	m.usage.EXPECT().FetchBills(mockAnyContext(), "fresh", testURN).Return(juneBills(), nil)

	_, err := pipeline.Run(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, 1, m.recorder.reauths)
	assert.Equal(t, []domain.Stage{domain.StageResolve}, m.recorder.failed)
}

func TestPipelineFailsWhenResolveFailsAfterReauthentication(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{Token: "stale"}, domain.CacheHit)
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "stale").
		Return(domain.CustomerURN(""), &domain.ResolveError{Status: 401}).Once()
	m.store.EXPECT().Clear(mockAnyContext()).Return(nil).Once()
	m.auth.EXPECT().Authenticate(mockAnyContext(), mock.Anything, mock.Anything).Return("fresh", nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", domain.CustomerURN("")).Return(nil).Once()
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "fresh").
		Return(domain.CustomerURN(""), &domain.ResolveError{Status: 500, Body: "down"}).Once()

	_, err := pipeline.Run(context.Background(), testCreds)

	var resolveErr *domain.ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, 500, resolveErr.Status)
	assert.Equal(t, 1, m.recorder.reauths)
	assert.Equal(t, err, m.recorder.runErr)
}

func TestPipelineFreshResolveFailureIsFatal(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheMissing)
	m.auth.EXPECT().Authenticate(mockAnyContext(), mock.Anything, mock.Anything).Return("fresh", nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", domain.CustomerURN("")).Return(nil).Once()
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "fresh").
		Return(domain.CustomerURN(""), &domain.ResolveError{Status: 403}).Once()

	_, err := pipeline.Run(context.Background(), testCreds)

	var resolveErr *domain.ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Zero(t, m.recorder.reauths)
}

func TestPipelineAuthFailureIsFatal(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	sample := map[string]string{"msal.token.keys": "[]"}
	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheMissing)
	m.auth.EXPECT().Authenticate(mockAnyContext(), mock.Anything, mock.Anything).
		Return("", &domain.AuthError{Reason: "token not found", DebugSample: sample, Err: domain.ErrTokenNotFound}).Once()

	_, err := pipeline.Run(context.Background(), testCreds)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, sample, authErr.DebugSample)
	assert.Equal(t, []domain.Stage{domain.StageAuthenticate}, m.recorder.failed)
}

func TestPipelineWrapsUntypedAdapterErrors(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheMissing)
	m.auth.EXPECT().Authenticate(mockAnyContext(), mock.Anything, mock.Anything).Return("", errors.New("chrome crashed")).Once()

	_, err := pipeline.Run(context.Background(), testCreds)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "chrome crashed", authErr.Reason)
	assert.Equal(t, domain.StageAuthenticate, authErr.Stage())
}

func TestPipelineRejectsEmptyTokenFromAuthenticator(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheMissing)
	m.auth.EXPECT().Authenticate(mockAnyContext(), mock.Anything, mock.Anything).Return("", nil).Once()

	_, err := pipeline.Run(context.Background(), testCreds)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestPipelineMissingCredentialsSkipsAuthenticator(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheMissing)

	_, err := pipeline.Run(context.Background(), ports.Credentials{Username: "only-user"})

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, domain.ErrCredentialsMissing)
}

func TestPipelineWithoutAuthenticator(t *testing.T) {
	store := mocks.NewMockTokenStore(t)
	store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheMissing)

	pipeline := NewPipeline(PipelineDeps{Store: store, Logger: zerolog.Nop()})

	_, err := pipeline.Run(context.Background(), testCreds)
	assert.ErrorIs(t, err, domain.ErrAuthenticatorAbsent)
}

func TestPipelineQueryFailureDoesNotReauthenticate(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{Token: "cached", CustomerURN: testURN}, domain.CacheHit)
	m.usage.EXPECT().FetchBills(mockAnyContext(), "cached", testURN).
		Return(domain.BillsResponse{}, &domain.QueryError{Status: 401, Body: "unauthorized"}).Once()

	_, err := pipeline.Run(context.Background(), testCreds)

	var queryErr *domain.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, 401, queryErr.Status)
	assert.Zero(t, m.recorder.reauths)
}

func TestPipelineAggregateFailureSurfaces(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{Token: "cached", CustomerURN: testURN}, domain.CacheHit)
	m.usage.EXPECT().FetchBills(mockAnyContext(), "cached", testURN).Return(billsResponse(), nil)

	_, err := pipeline.Run(context.Background(), testCreds)

	var aggregateErr *domain.AggregateError
	require.ErrorAs(t, err, &aggregateErr)
	assert.Equal(t, []domain.Stage{domain.StageAggregate}, m.recorder.failed)
}

func TestPipelineCacheWriteFailureIsNotFatal(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	writeErr := &domain.CacheWriteError{Path: "/ro/tokens.json", Err: errors.New("read-only file system")}
	m.store.EXPECT().Load(mockAnyContext()).Return(domain.CachedCredential{}, domain.CacheMissing)
	m.auth.EXPECT().Authenticate(mockAnyContext(), mock.Anything, mock.Anything).Return("fresh", nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", mock.Anything).Return(writeErr).Twice()
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "fresh").Return(testURN, nil).Once()
	m.usage.EXPECT().FetchBills(mockAnyContext(), "fresh", testURN).Return(juneBills(), nil)

	_, err := pipeline.Run(context.Background(), testCreds)
	require.NoError(t, err)
}

func TestPipelineLoginClearsCacheAndResolves(t *testing.T) {
	pipeline, m := newTestPipeline(t)

	m.store.EXPECT().Clear(mockAnyContext()).Return(nil).Once()
	m.auth.EXPECT().Authenticate(mockAnyContext(), testCreds.Username, testCreds.Password).Return("fresh", nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", domain.CustomerURN("")).Return(nil).Once()
	m.resolver.EXPECT().ResolveCustomer(mockAnyContext(), "fresh").Return(testURN, nil).Once()
	m.store.EXPECT().Save(mockAnyContext(), "fresh", testURN).Return(nil).Once()

	session, err := pipeline.Login(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, testURN, session.CustomerURN)
	assert.Equal(t, domain.TokenSourceFreshLogin, session.Source)
}
