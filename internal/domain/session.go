package domain

import (
	"strings"
	"time"
)

// CustomerURN identifies the billing account every usage query is scoped to.
type CustomerURN string

const customerURNUUIDPrefix = "urn:opower:customer:uuid:"

func CustomerURNFromUUID(uuid string) CustomerURN {
	return CustomerURN(customerURNUUIDPrefix + uuid)
}

func (u CustomerURN) String() string {
	return string(u)
}

func (u CustomerURN) IsZero() bool {
	return strings.TrimSpace(string(u)) == ""
}

type TokenSource string

const (
	TokenSourceCache      TokenSource = "cache"
	TokenSourceFreshLogin TokenSource = "fresh_login"
)

// Session is the credential state threaded through one pipeline run.
// It is a value: stages return an updated copy instead of mutating it.
type Session struct {
	Token       string
	CustomerURN CustomerURN
	Source      TokenSource
	SavedAt     time.Time
}

func NewSession(token string, source TokenSource) Session {
	return Session{Token: token, Source: source}
}

func (s Session) WithCustomerURN(urn CustomerURN) Session {
	s.CustomerURN = urn
	return s
}

func (s Session) HasCustomerURN() bool {
	return !s.CustomerURN.IsZero()
}

func (s Session) FromCache() bool {
	return s.Source == TokenSourceCache
}

// CachedCredential is the single record kept by the token cache.
// SavedAt is advisory; freshness comes from the token's own exp claim.
type CachedCredential struct {
	Token       string
	SavedAt     time.Time
	CustomerURN CustomerURN
}

func (c CachedCredential) Present() bool {
	return strings.TrimSpace(c.Token) != ""
}

func (c CachedCredential) Session() Session {
	return Session{
		Token:       c.Token,
		CustomerURN: c.CustomerURN,
		Source:      TokenSourceCache,
		SavedAt:     c.SavedAt,
	}
}

// CacheStatus reports why a cache load did or did not yield a credential.
type CacheStatus int

const (
	CacheHit CacheStatus = iota
	CacheMissing
	CacheEmptyToken
	CacheCorrupt
	CacheExpired
)

func (s CacheStatus) String() string {
	switch s {
	case CacheHit:
		return "hit"
	case CacheMissing:
		return "missing"
	case CacheEmptyToken:
		return "empty_token"
	case CacheCorrupt:
		return "corrupt"
	case CacheExpired:
		return "expired"
	default:
		return "unknown"
	}
}
