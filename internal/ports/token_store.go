package ports

import (
	"context"

	"github.com/bnema/ngmetro/internal/domain"
)

// TokenStore persists the single cached bearer token. Load fails open: any
// status other than CacheHit comes with a zero credential.
type TokenStore interface {
	Load(ctx context.Context) (domain.CachedCredential, domain.CacheStatus)
	Save(ctx context.Context, token string, urn domain.CustomerURN) error
	Clear(ctx context.Context) error
}
