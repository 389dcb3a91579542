package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/bnema/ngmetro/internal/ports"
)

var (
	ErrUnavailable = errors.New("pass command unavailable")
	ErrEmptyEntry  = errors.New("pass entry is empty")
)

var usernameKeys = []string{"login", "username", "user", "email"}

type runFunc func(ctx context.Context, args ...string) (stdout string, stderr string, err error)

// Source reads the portal password from a pass entry. The first line is the
// password; a later "login:", "username:", "user:" or "email:" line
// overrides the configured username.
type Source struct {
	entry    string
	username string
	run      runFunc
}

var _ ports.CredentialSource = (*Source)(nil)

func NewSource(entry, username string) *Source {
	return &Source{
		entry:    strings.TrimSpace(entry),
		username: strings.TrimSpace(username),
		run:      runPassCommand,
	}
}

func (s *Source) Credentials(ctx context.Context) (ports.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return ports.Credentials{}, err
	}
	if s.entry == "" {
		return ports.Credentials{}, errors.New("pass entry name is empty")
	}

	stdout, stderr, err := s.run(ctx, "show", s.entry)
	if err != nil {
		return ports.Credentials{}, formatError(s.entry, err, stderr)
	}

	password, username := parseEntry(stdout)
	if password == "" {
		return ports.Credentials{}, fmt.Errorf("pass show %q: %w", s.entry, ErrEmptyEntry)
	}
	if username == "" {
		username = s.username
	}

	return ports.Credentials{Username: username, Password: password}, nil
}

func parseEntry(content string) (password string, username string) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	password = lines[0]
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if !slices.Contains(usernameKeys, strings.ToLower(strings.TrimSpace(key))) {
			continue
		}
		if v := strings.TrimSpace(value); v != "" && username == "" {
			username = v
		}
	}

	return password, username
}

func runPassCommand(ctx context.Context, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(entry string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass show %q: %w", entry, err)
	}

	return fmt.Errorf("pass show %q: %w: %s", entry, err, stderr)
}
