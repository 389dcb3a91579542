package opower

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
)

const (
	queryWindowDays = 730
	maxBills        = 78
)

var _ ports.UsageClient = Client{}

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Variables     billsVariables `json:"variables"`
	Query         string         `json:"query"`
}

type billsVariables struct {
	Resolution      string `json:"resolution"`
	TimeInterval    string `json:"timeInterval"`
	Last            int    `json:"last"`
	Aliased         bool   `json:"aliased"`
	ForceLegacyData bool   `json:"forceLegacyData"`
	CustomerURN     string `json:"customerURN"`
	Locale          string `json:"locale"`
}

// QueryWindow formats the trailing window ending at now as
// <start>T00:00:00<offset>/<end>T23:59:59<offset> in loc.
func QueryWindow(now time.Time, loc *time.Location) string {
	end := now.In(loc)
	start := end.AddDate(0, 0, -queryWindowDays)

	return fmt.Sprintf("%sT00:00:00%s/%sT23:59:59%s",
		start.Format(time.DateOnly), start.Format("-07:00"),
		end.Format(time.DateOnly), end.Format("-07:00"),
	)
}

func (c Client) FetchBills(ctx context.Context, token string, urn domain.CustomerURN) (domain.BillsResponse, error) {
	if urn.IsZero() {
		return domain.BillsResponse{}, &domain.QueryError{
			Reason: domain.ErrCustomerURNMissing.Error(),
			Err:    domain.ErrCustomerURNMissing,
		}
	}

	endpoint, err := c.endpoint(graphQLPath)
	if err != nil {
		return domain.BillsResponse{}, &domain.QueryError{Reason: "invalid base url", Err: err}
	}

	payload, err := json.Marshal(graphQLRequest{
		OperationName: billsOperationName,
		Variables: billsVariables{
			Resolution:      "BILL",
			TimeInterval:    QueryWindow(c.now(), c.location()),
			Last:            maxBills,
			Aliased:         false,
			ForceLegacyData: true,
			CustomerURN:     urn.String(),
			Locale:          "en-US",
		},
		Query: billsQuery,
	})
	if err != nil {
		return domain.BillsResponse{}, &domain.QueryError{Reason: "encode bills query", Err: err}
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := c.newRequest(requestCtx, http.MethodPost, endpoint, token, bytes.NewReader(payload))
	if err != nil {
		return domain.BillsResponse{}, &domain.QueryError{Reason: "create bills request", Err: err}
	}

	status, body, err := c.do(req)
	if err != nil {
		return domain.BillsResponse{}, &domain.QueryError{Status: status, Reason: "request bills", Err: err}
	}
	if status != http.StatusOK {
		return domain.BillsResponse{}, &domain.QueryError{Status: status, Body: string(body)}
	}

	var resp domain.BillsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.BillsResponse{}, &domain.QueryError{
			Status: status,
			Body:   string(body),
			Reason: "decode bills response",
			Err:    err,
		}
	}

	return resp, nil
}
