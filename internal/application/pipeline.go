package application

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type PipelineDeps struct {
	Store         ports.TokenStore
	Authenticator ports.Authenticator
	Resolver      ports.CustomerResolver
	Usage         ports.UsageClient
	Clock         ports.Clock
	// Location is the zone "now" is read in before it is compared with
	// bill dates.
	Location *time.Location
	Recorder ports.RunRecorder
	Logger   zerolog.Logger
}

// Pipeline runs cache check, authentication, customer resolution, bill
// fetch and aggregation for one set of credentials. A Pipeline is safe for
// sequential reuse; concurrent runs share the token cache.
type Pipeline struct {
	store    ports.TokenStore
	auth     ports.Authenticator
	resolver ports.CustomerResolver
	usage    ports.UsageClient
	clock    ports.Clock
	location *time.Location
	recorder ports.RunRecorder
	logger   zerolog.Logger
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Recorder == nil {
		deps.Recorder = ports.NopRecorder{}
	}

	return &Pipeline{
		store:    deps.Store,
		auth:     deps.Authenticator,
		resolver: deps.Resolver,
		usage:    deps.Usage,
		clock:    deps.Clock,
		location: deps.Location,
		recorder: deps.Recorder,
		logger:   deps.Logger,
	}
}

func (p *Pipeline) Run(ctx context.Context, creds ports.Credentials) (report domain.UsageReport, err error) {
	started := time.Now()
	logger := p.runLogger()
	defer func() {
		p.recorder.RunCompleted(time.Since(started), err)
		if err != nil {
			logger.Error().Err(err).Msg("pipeline failed")
			return
		}
		logger.Info().Int("bills", report.Summary.BillCount).Dur("duration", time.Since(started)).Msg("pipeline completed")
	}()

	session, cached := p.cachedSession(ctx, logger)

	if cached && !session.HasCustomerURN() {
		resolved, resolveErr := p.resolve(ctx, logger, session)
		if resolveErr == nil {
			session = resolved
		} else {
			logger.Warn().Err(resolveErr).Msg("cached token rejected, logging in again")
			p.recorder.Reauthenticated()
			if clearErr := p.store.Clear(ctx); clearErr != nil {
				logger.Warn().Err(clearErr).Msg("could not clear token cache")
			}
			cached = false
		}
	}

	if !cached {
		session, err = p.login(ctx, logger, creds)
		if err != nil {
			return domain.UsageReport{}, err
		}
	}

	resp, err := p.fetchBills(ctx, logger, session)
	if err != nil {
		return domain.UsageReport{}, err
	}

	return p.aggregate(logger, resp)
}

// Login discards any cached token, authenticates and caches the resolved
// session.
func (p *Pipeline) Login(ctx context.Context, creds ports.Credentials) (domain.Session, error) {
	logger := p.runLogger()

	if err := p.store.Clear(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not clear token cache")
	}

	return p.login(ctx, logger, creds)
}

func (p *Pipeline) runLogger() zerolog.Logger {
	return p.logger.With().Str("run_id", uuid.NewString()).Logger()
}

func (p *Pipeline) cachedSession(ctx context.Context, logger zerolog.Logger) (domain.Session, bool) {
	started := time.Now()
	cred, status := p.store.Load(ctx)
	p.recorder.CacheLoaded(status)
	p.recorder.StageCompleted(domain.StageCache, time.Since(started), nil)

	logger.Debug().Str("status", status.String()).Msg("token cache checked")
	if status != domain.CacheHit {
		return domain.Session{}, false
	}

	return cred.Session(), true
}

func (p *Pipeline) login(ctx context.Context, logger zerolog.Logger, creds ports.Credentials) (domain.Session, error) {
	session, err := p.authenticate(ctx, logger, creds)
	if err != nil {
		return domain.Session{}, err
	}

	return p.resolve(ctx, logger, session)
}

func (p *Pipeline) authenticate(ctx context.Context, logger zerolog.Logger, creds ports.Credentials) (session domain.Session, err error) {
	started := time.Now()
	defer func() { p.recorder.StageCompleted(domain.StageAuthenticate, time.Since(started), err) }()

	switch {
	case p.auth == nil:
		return domain.Session{}, &domain.AuthError{Reason: domain.ErrAuthenticatorAbsent.Error(), Err: domain.ErrAuthenticatorAbsent}
	case !creds.Complete():
		return domain.Session{}, &domain.AuthError{Reason: domain.ErrCredentialsMissing.Error(), Err: domain.ErrCredentialsMissing}
	}

	logger.Debug().Msg("starting fresh login")

	token, err := p.auth.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			return domain.Session{}, err
		}
		return domain.Session{}, &domain.AuthError{Reason: err.Error(), Err: err}
	}
	if token == "" {
		return domain.Session{}, &domain.AuthError{Reason: domain.ErrTokenNotFound.Error(), Err: domain.ErrTokenNotFound}
	}

	p.save(ctx, logger, token, "")

	return domain.NewSession(token, domain.TokenSourceFreshLogin), nil
}

func (p *Pipeline) resolve(ctx context.Context, logger zerolog.Logger, session domain.Session) (_ domain.Session, err error) {
	started := time.Now()
	defer func() { p.recorder.StageCompleted(domain.StageResolve, time.Since(started), err) }()

	urn, err := p.resolver.ResolveCustomer(ctx, session.Token)
	if err != nil {
		var resolveErr *domain.ResolveError
		if errors.As(err, &resolveErr) {
			return domain.Session{}, err
		}
		return domain.Session{}, &domain.ResolveError{Err: err}
	}

	logger.Debug().Str("customer_urn", urn.String()).Str("source", string(session.Source)).Msg("customer resolved")
	p.save(ctx, logger, session.Token, urn)

	return session.WithCustomerURN(urn), nil
}

func (p *Pipeline) fetchBills(ctx context.Context, logger zerolog.Logger, session domain.Session) (_ domain.BillsResponse, err error) {
	started := time.Now()
	defer func() { p.recorder.StageCompleted(domain.StageFetchBills, time.Since(started), err) }()

	resp, err := p.usage.FetchBills(ctx, session.Token, session.CustomerURN)
	if err != nil {
		var queryErr *domain.QueryError
		if errors.As(err, &queryErr) {
			return domain.BillsResponse{}, err
		}
		return domain.BillsResponse{}, &domain.QueryError{Err: err}
	}

	logger.Debug().Int("bills", len(resp.Bills())).Msg("bills fetched")

	return resp, nil
}

func (p *Pipeline) aggregate(logger zerolog.Logger, resp domain.BillsResponse) (_ domain.UsageReport, err error) {
	started := time.Now()
	defer func() { p.recorder.StageCompleted(domain.StageAggregate, time.Since(started), err) }()

	report, err := Aggregate(resp, p.clock.Now().In(p.location))
	if err != nil {
		return domain.UsageReport{}, err
	}

	if estimate := report.CurrentEstimate; estimate != nil && estimate.Note != "" {
		logger.Debug().Str("note", estimate.Note).Msg("no current period projection")
	}

	return report, nil
}

func (p *Pipeline) save(ctx context.Context, logger zerolog.Logger, token string, urn domain.CustomerURN) {
	if err := p.store.Save(ctx, token, urn); err != nil {
		logger.Warn().Err(err).Msg("could not write token cache")
	}
}
