package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/bnema/ngmetro/internal/ports"
	"github.com/rs/zerolog"
)

const (
	cacheDirMode    = 0o700
	cacheFileMode   = 0o600
	tempFilePattern = ".tokens-*.json.tmp"
)

type TokenValidator interface {
	IsExpired(token string) bool
}

// Store keeps one bearer token record in a JSON file readable only by its
// owner. Writers in other processes are not coordinated; the last rename wins.
type Store struct {
	path      string
	validator TokenValidator
	logger    zerolog.Logger
	now       func() time.Time
	mu        sync.Mutex
}

var _ ports.TokenStore = (*Store)(nil)

func NewStore(path string, validator TokenValidator, logger zerolog.Logger) *Store {
	return &Store{
		path:      filepath.Clean(path),
		validator: validator,
		logger:    logger.With().Str("component", "tokencache").Logger(),
		now:       time.Now,
	}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) (domain.CachedCredential, domain.CacheStatus) {
	if err := ctx.Err(); err != nil {
		return domain.CachedCredential{}, domain.CacheMissing
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.read()
	if err != nil {
		if errors.Is(err, domain.ErrCacheNotFound) {
			return domain.CachedCredential{}, domain.CacheMissing
		}
		s.logger.Debug().Err(err).Msg("discarding unreadable token cache")
		s.discard()
		return domain.CachedCredential{}, domain.CacheCorrupt
	}

	if !cred.Present() {
		s.discard()
		return domain.CachedCredential{}, domain.CacheEmptyToken
	}

	if s.validator != nil && s.validator.IsExpired(cred.Token) {
		s.discard()
		return domain.CachedCredential{}, domain.CacheExpired
	}

	return cred, domain.CacheHit
}

func (s *Store) Save(ctx context.Context, token string, urn domain.CustomerURN) error {
	if err := ctx.Err(); err != nil {
		return &domain.CacheWriteError{Path: s.path, Err: err}
	}
	if strings.TrimSpace(token) == "" {
		return &domain.CacheWriteError{Path: s.path, Err: errors.New("token is empty")}
	}

	record := fileSchema{
		Tokens:  tokensSchema{AccessToken: token},
		SavedAt: formatSavedAt(s.now()),
	}
	if !urn.IsZero() {
		value := urn.String()
		record.CustomerURN = &value
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &domain.CacheWriteError{Path: s.path, Err: fmt.Errorf("encode token cache: %w", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(data); err != nil {
		return &domain.CacheWriteError{Path: s.path, Err: err}
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete token cache: %w", err)
	}

	return nil
}

func (s *Store) read() (domain.CachedCredential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CachedCredential{}, domain.ErrCacheNotFound
		}
		return domain.CachedCredential{}, &domain.CacheReadError{Path: s.path, Err: err}
	}

	var record fileSchema
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.CachedCredential{}, &domain.CacheReadError{Path: s.path, Err: fmt.Errorf("decode token cache: %w", err)}
	}

	cred := domain.CachedCredential{
		Token:   record.Tokens.AccessToken,
		SavedAt: parseSavedAt(record.SavedAt),
	}
	if record.CustomerURN != nil {
		cred.CustomerURN = domain.CustomerURN(*record.CustomerURN)
	}

	return cred, nil
}

func (s *Store) discard() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("could not delete token cache")
	}
}

func (s *Store) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, cacheDirMode); err != nil {
		return fmt.Errorf("create token cache directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp token cache: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp token cache: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp token cache: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace token cache: %w", err)
	}

	cleanup = false

	if err := os.Chmod(s.path, cacheFileMode); err != nil {
		return fmt.Errorf("chmod token cache: %w", err)
	}

	return nil
}
