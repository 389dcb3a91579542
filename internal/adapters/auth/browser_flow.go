package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

const (
	defaultLoginTimeout = 2 * time.Minute
	defaultSettleDelay  = 5 * time.Second
	defaultPollInterval = 250 * time.Millisecond
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	usernameSelector = "#signInName"
	passwordSelector = "#password"
)

// dumpStorageJS returns every local and session storage entry.
const dumpStorageJS = `(() => {
	const entries = [];
	for (let i = 0; i < localStorage.length; i++) {
		const key = localStorage.key(i);
		entries.push({key: key, value: localStorage.getItem(key) || "", session: false});
	}
	for (let i = 0; i < sessionStorage.length; i++) {
		const key = sessionStorage.key(i);
		entries.push({key: key, value: sessionStorage.getItem(key) || "", session: true});
	}
	return entries;
})()`

type BrowserConfig struct {
	// AuthBaseURL is the account portal, e.g. https://myaccount.nationalgrid.com.
	AuthBaseURL string
	// AccountHost ends the redirect wait; it defaults to AuthBaseURL's host.
	AccountHost string
	ExecPath    string
	UserAgent   string
	Timeout     time.Duration
	SettleDelay time.Duration
	Headful     bool
}

// BrowserAuthenticator logs in through headless Chrome and harvests the
// resource token the portal leaves in browser storage.
type BrowserAuthenticator struct {
	cfg    BrowserConfig
	logger zerolog.Logger
}

var _ ports.Authenticator = (*BrowserAuthenticator)(nil)

func NewBrowserAuthenticator(cfg BrowserConfig, logger zerolog.Logger) *BrowserAuthenticator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLoginTimeout
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")

	return &BrowserAuthenticator{cfg: cfg, logger: logger}
}

func (a *BrowserAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", &domain.AuthError{Reason: domain.ErrCredentialsMissing.Error(), Err: domain.ErrCredentialsMissing}
	}

	host, err := accountHost(a.cfg.AuthBaseURL)
	if err != nil {
		return "", &domain.AuthError{Reason: "invalid auth base url", Err: err}
	}
	if a.cfg.AccountHost != "" {
		host = a.cfg.AccountHost
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, a.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, a.cfg.Timeout)
	defer cancel()

	a.logger.Debug().Str("url", a.cfg.AuthBaseURL+"/login").Msg("starting browser login")

	var entries []StorageEntry
	err = chromedp.Run(runCtx,
		chromedp.Navigate(a.cfg.AuthBaseURL+"/login"),
		chromedp.WaitVisible(usernameSelector, chromedp.ByID),
		chromedp.SendKeys(usernameSelector, username, chromedp.ByID),
		chromedp.WaitVisible(passwordSelector, chromedp.ByID),
		chromedp.SendKeys(passwordSelector, password, chromedp.ByID),
		chromedp.Submit(passwordSelector, chromedp.ByID),
		waitForHost(host, defaultPollInterval),
		chromedp.Navigate(a.cfg.AuthBaseURL+"/Energy"),
		chromedp.Sleep(a.cfg.SettleDelay),
		chromedp.Evaluate(dumpStorageJS, &entries),
	)
	if err != nil {
		reason := "browser login failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "browser login timed out"
		}
		return "", &domain.AuthError{Reason: reason, Err: err}
	}

	a.logger.Debug().Int("entries", len(entries)).Msg("read browser storage")

	return ExtractToken(entries)
}

func (a *BrowserAuthenticator) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !a.cfg.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.UserAgent(a.cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if a.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(a.cfg.ExecPath))
	}
	return opts
}

// waitForHost blocks until the page location is on host, which marks the
// end of the identity provider redirect chain.
func waitForHost(host string, interval time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			var location string
			if err := chromedp.Location(&location).Do(ctx); err != nil {
				return fmt.Errorf("read page location: %w", err)
			}
			if onHost(location, host) {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

func onHost(location, host string) bool {
	parsed, err := url.Parse(location)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Hostname(), host)
}

func accountHost(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse auth base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("auth base url must use http or https")
	}
	if parsed.Hostname() == "" {
		return "", errors.New("auth base url host is required")
	}
	return parsed.Hostname(), nil
}
