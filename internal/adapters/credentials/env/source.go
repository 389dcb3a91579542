package env

import (
	"context"
	"strings"

	"github.com/bnema/ngmetro/internal/ports"
)

// Source serves credentials already resolved from configuration and the
// process environment.
type Source struct {
	username string
	password string
}

var _ ports.CredentialSource = Source{}

func NewSource(username, password string) Source {
	return Source{
		username: strings.TrimSpace(username),
		password: password,
	}
}

func (s Source) Credentials(ctx context.Context) (ports.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return ports.Credentials{}, err
	}

	return ports.Credentials{Username: s.username, Password: s.password}, nil
}
