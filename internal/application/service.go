package application

import (
	"context"
	"fmt"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
)

// Service binds a Pipeline to the configured credential source.
type Service struct {
	pipeline *Pipeline
	creds    ports.CredentialSource
	store    ports.TokenStore
}

func NewService(pipeline *Pipeline, creds ports.CredentialSource, store ports.TokenStore) *Service {
	return &Service{
		pipeline: pipeline,
		creds:    creds,
		store:    store,
	}
}

// Usage runs the pipeline with the current credentials.
func (s *Service) Usage(ctx context.Context) (domain.UsageReport, error) {
	creds, err := s.credentials(ctx)
	if err != nil {
		return domain.UsageReport{}, err
	}

	return s.pipeline.Run(ctx, creds)
}

// Login forces a fresh authentication and caches the result.
func (s *Service) Login(ctx context.Context) (domain.Session, error) {
	creds, err := s.credentials(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	return s.pipeline.Login(ctx, creds)
}

// CachedSession reports the cached credential without starting a login.
// Expired or unreadable records are discarded by the store.
func (s *Service) CachedSession(ctx context.Context) (domain.CachedCredential, domain.CacheStatus) {
	return s.store.Load(ctx)
}

func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear token cache: %w", err)
	}
	return nil
}

// credentials loads the username and password. Incomplete credentials are an
// authentication failure because a fresh login could not run.
func (s *Service) credentials(ctx context.Context) (ports.Credentials, error) {
	if s.creds == nil {
		return ports.Credentials{}, nil
	}

	creds, err := s.creds.Credentials(ctx)
	if err != nil {
		return ports.Credentials{}, &domain.AuthError{Reason: "load credentials", Err: err}
	}

	return creds, nil
}
