package ports

import (
	"context"

	"github.com/bnema/ngmetro/internal/domain"
)

type CustomerResolver interface {
	ResolveCustomer(ctx context.Context, token string) (domain.CustomerURN, error)
}

type UsageClient interface {
	FetchBills(ctx context.Context, token string, urn domain.CustomerURN) (domain.BillsResponse, error)
}
