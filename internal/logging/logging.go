package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a timestamped logger writing to w. An unknown level falls back
// to info. Console output is human readable; JSON output is one object per
// line.
func New(w io.Writer, level string, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Format picks the output format: explicit wins, otherwise console for
// interactive commands and JSON for the server.
func Format(explicit string, interactive bool) string {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case FormatConsole:
		return FormatConsole
	case FormatJSON:
		return FormatJSON
	}
	if interactive {
		return FormatConsole
	}
	return FormatJSON
}
