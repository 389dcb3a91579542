package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/ngmetro/internal/ports"
)

// Source asks primary first and falls back when it fails or returns
// incomplete credentials. Fields the primary did return are kept.
type Source struct {
	primary  ports.CredentialSource
	fallback ports.CredentialSource
}

var _ ports.CredentialSource = (*Source)(nil)

var (
	errNilPrimarySource  = errors.New("primary credential source is nil")
	errNilFallbackSource = errors.New("fallback credential source is nil")
)

func NewSource(primary ports.CredentialSource, fallback ports.CredentialSource) *Source {
	source, err := NewSourceChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return source
}

func NewSourceChecked(primary ports.CredentialSource, fallback ports.CredentialSource) (*Source, error) {
	if primary == nil {
		return nil, errNilPrimarySource
	}
	if fallback == nil {
		return nil, errNilFallbackSource
	}

	return &Source{primary: primary, fallback: fallback}, nil
}

func (s *Source) Credentials(ctx context.Context) (ports.Credentials, error) {
	creds, err := s.primary.Credentials(ctx)
	if err == nil && creds.Complete() {
		return creds, nil
	}
	if err != nil && shouldSkipFallback(err) {
		return ports.Credentials{}, err
	}

	fallbackCreds, fallbackErr := s.fallback.Credentials(ctx)
	if fallbackErr != nil {
		if err != nil {
			return ports.Credentials{}, fmt.Errorf("primary credential source failed: %w; fallback credential source failed: %w", err, fallbackErr)
		}
		return creds, nil
	}

	return merge(creds, fallbackCreds), nil
}

func merge(primary, fallback ports.Credentials) ports.Credentials {
	if primary.Username == "" {
		primary.Username = fallback.Username
	}
	if primary.Password == "" {
		primary.Password = fallback.Password
	}
	return primary
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
