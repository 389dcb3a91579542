package opower

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://ngny-gas.opower.com"

	customerPath = "/ei/edge/apis/multi-account-v1/cws/ngbk/customers/current"
	graphQLPath  = "/ei/edge/apis/dsm-graphql-v1/cws/graphql"

	defaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	defaultRequestTimeout = 60 * time.Second
	defaultZone           = "America/New_York"
	maxResponseBytes      = 1 << 20
)

// Client talks to the Opower customer and GraphQL endpoints on behalf of a
// bearer token. The zero value targets DefaultBaseURL.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	UserAgent      string
	// Location supplies the offset written into the bills query window.
	Location *time.Location
	Now      func() time.Time
	Logger   zerolog.Logger
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func (c Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Client) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	if loc, err := time.LoadLocation(defaultZone); err == nil {
		return loc
	}
	return time.Local
}

func (c Client) endpoint(path string) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	parsed, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse opower base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("opower base url must use http or https")
	}

	return parsed.String() + path, nil
}

func (c Client) newRequest(ctx context.Context, method, endpoint, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do sends req and returns the status and at most maxResponseBytes of body.
func (c Client) do(req *http.Request) (int, []byte, error) {
	started := time.Now()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}

	c.Logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("opower request")

	return resp.StatusCode, body, nil
}
