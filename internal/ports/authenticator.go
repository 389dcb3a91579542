package ports

import "context"

// Authenticator completes an interactive login and returns a raw bearer
// token. Failures are *domain.AuthError.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}
