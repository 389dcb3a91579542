package opower

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
)

var _ ports.CustomerResolver = Client{}

type customerShape int

const (
	customerShapeUnknown customerShape = iota
	customerShapeDirect
	customerShapeResults
)

// customerPayload is the account-info body after inspection. URN is only
// set for the known shapes.
type customerPayload struct {
	Shape customerShape
	URN   domain.CustomerURN
}

type customerBody struct {
	UUID    *string          `json:"uuid"`
	Results []customerRecord `json:"results"`
}

type customerRecord struct {
	URN  string `json:"urn"`
	UUID string `json:"uuid"`
}

// inspectCustomerPayload classifies the account-info body. A top-level uuid
// wins over a results list.
func inspectCustomerPayload(body []byte) customerPayload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return customerPayload{Shape: customerShapeUnknown}
	}

	var decoded customerBody
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return customerPayload{Shape: customerShapeUnknown}
	}

	if decoded.UUID != nil && strings.TrimSpace(*decoded.UUID) != "" {
		return customerPayload{Shape: customerShapeDirect, URN: domain.CustomerURNFromUUID(*decoded.UUID)}
	}

	if len(decoded.Results) > 0 {
		first := decoded.Results[0]
		switch {
		case strings.TrimSpace(first.URN) != "":
			return customerPayload{Shape: customerShapeResults, URN: domain.CustomerURN(first.URN)}
		case strings.TrimSpace(first.UUID) != "":
			return customerPayload{Shape: customerShapeResults, URN: domain.CustomerURNFromUUID(first.UUID)}
		}
	}

	return customerPayload{Shape: customerShapeUnknown}
}

func (c Client) ResolveCustomer(ctx context.Context, token string) (domain.CustomerURN, error) {
	endpoint, err := c.endpoint(customerPath)
	if err != nil {
		return "", &domain.ResolveError{Reason: "invalid base url", Err: err}
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := c.newRequest(requestCtx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return "", &domain.ResolveError{Reason: "create customer request", Err: err}
	}

	status, body, err := c.do(req)
	if err != nil {
		return "", &domain.ResolveError{Status: status, Reason: "request customer", Err: err}
	}
	if status != http.StatusOK {
		return "", &domain.ResolveError{Status: status, Body: string(body)}
	}

	payload := inspectCustomerPayload(body)
	if payload.Shape == customerShapeUnknown {
		return "", &domain.ResolveError{
			Status: status,
			Body:   string(body),
			Reason: domain.ErrUnexpectedPayload.Error(),
			Err:    domain.ErrUnexpectedPayload,
		}
	}

	return payload.URN, nil
}
