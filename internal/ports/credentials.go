package ports

import "context"

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}
