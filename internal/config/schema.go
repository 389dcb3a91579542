package config

import "fmt"

const currentSchemaVersion = 1

// fileSchema is the layout written by WriteFile. Password is never written.
type fileSchema struct {
	Version     int               `toml:"version"`
	Username    string            `toml:"username"`
	Credentials credentialsSchema `toml:"credentials"`
	Opower      opowerSchema      `toml:"opower"`
	Auth        authSchema        `toml:"auth"`
	Cache       cacheSchema       `toml:"cache"`
	Query       querySchema       `toml:"query"`
	HTTP        httpSchema        `toml:"http"`
	Server      serverSchema      `toml:"server"`
	Log         logSchema         `toml:"log"`
}

type credentialsSchema struct {
	PassEntry string `toml:"pass_entry"`
}

type opowerSchema struct {
	BaseURL string `toml:"base_url"`
}

type authSchema struct {
	BaseURL     string `toml:"base_url"`
	AccountHost string `toml:"account_host"`
	Timeout     string `toml:"timeout"`
	ChromePath  string `toml:"chrome_path"`
	Headful     bool   `toml:"headful"`
}

type cacheSchema struct {
	Path string `toml:"path"`
}

type querySchema struct {
	Timezone string `toml:"timezone"`
}

type httpSchema struct {
	Timeout string `toml:"timeout"`
}

type serverSchema struct {
	Addr string `toml:"addr"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Version:     currentSchemaVersion,
		Username:    cfg.Username,
		Credentials: credentialsSchema{PassEntry: cfg.PassEntry},
		Opower:      opowerSchema{BaseURL: cfg.OpowerBaseURL},
		Auth: authSchema{
			BaseURL:     cfg.AuthBaseURL,
			AccountHost: cfg.AuthAccountHost,
			Timeout:     cfg.AuthTimeout.String(),
			ChromePath:  cfg.ChromePath,
			Headful:     cfg.Headful,
		},
		Cache:  cacheSchema{Path: cfg.CachePath},
		Query:  querySchema{Timezone: cfg.Timezone},
		HTTP:   httpSchema{Timeout: cfg.HTTPTimeout.String()},
		Server: serverSchema{Addr: cfg.ServerAddr},
		Log:    logSchema{Level: cfg.LogLevel, Format: cfg.LogFormat},
	}
}
