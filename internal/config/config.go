package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".ngnycmetro"
	cacheFile  = "tokens.json"
	envPrefix  = "NGM"

	DefaultOpowerBaseURL = "https://ngny-gas.opower.com"
	DefaultAuthBaseURL   = "https://myaccount.nationalgrid.com"
	DefaultTimezone      = "America/New_York"
	DefaultServerAddr    = ":50583"
	DefaultAuthTimeout   = 2 * time.Minute
	DefaultHTTPTimeout   = 60 * time.Second
)

const (
	keyVersion         = "version"
	keyUsername        = "username"
	keyPassword        = "password"
	keyPassEntry       = "credentials.pass_entry"
	keyOpowerBaseURL   = "opower.base_url"
	keyAuthBaseURL     = "auth.base_url"
	keyAuthAccountHost = "auth.account_host"
	keyAuthTimeout     = "auth.timeout"
	keyAuthChromePath  = "auth.chrome_path"
	keyAuthHeadful     = "auth.headful"
	keyCachePath       = "cache.path"
	keyQueryTimezone   = "query.timezone"
	keyHTTPTimeout     = "http.timeout"
	keyServerAddr      = "server.addr"
	keyLogLevel        = "log.level"
	keyLogFormat       = "log.format"
)

type Config struct {
	Username  string
	Password  string
	PassEntry string

	OpowerBaseURL string

	AuthBaseURL     string
	AuthAccountHost string
	AuthTimeout     time.Duration
	ChromePath      string
	Headful         bool

	CachePath   string
	Timezone    string
	HTTPTimeout time.Duration
	ServerAddr  string

	LogLevel  string
	LogFormat string

	// File is the config file that was read, empty when none was found.
	File string
}

// Location resolves the query time zone.
func (c Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

// Dir is the per-user directory holding the token cache and config file.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

// DefaultFile is the config file read when no explicit path is given.
func DefaultFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// Load reads configuration from defaults, the optional TOML file and the
// environment, in increasing precedence. An explicit configFile must exist.
func Load(cfg *viper.Viper, configFile string) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	setDefaults(cfg, dir)
	if err := bindEnv(cfg); err != nil {
		return Config{}, err
	}

	if configFile != "" {
		cfg.SetConfigFile(configFile)
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(dir)
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := (fileSchema{Version: cfg.GetInt(keyVersion)}).validateVersion(); err != nil {
		return Config{}, err
	}

	cachePath, err := expandPath(cfg.GetString(keyCachePath))
	if err != nil {
		return Config{}, err
	}
	if cachePath == "" {
		return Config{}, errors.New("cache path is empty")
	}

	loaded := Config{
		Username:        strings.TrimSpace(cfg.GetString(keyUsername)),
		Password:        cfg.GetString(keyPassword),
		PassEntry:       strings.TrimSpace(cfg.GetString(keyPassEntry)),
		OpowerBaseURL:   cfg.GetString(keyOpowerBaseURL),
		AuthBaseURL:     cfg.GetString(keyAuthBaseURL),
		AuthAccountHost: cfg.GetString(keyAuthAccountHost),
		AuthTimeout:     cfg.GetDuration(keyAuthTimeout),
		ChromePath:      cfg.GetString(keyAuthChromePath),
		Headful:         cfg.GetBool(keyAuthHeadful),
		CachePath:       cachePath,
		Timezone:        cfg.GetString(keyQueryTimezone),
		HTTPTimeout:     cfg.GetDuration(keyHTTPTimeout),
		ServerAddr:      cfg.GetString(keyServerAddr),
		LogLevel:        cfg.GetString(keyLogLevel),
		LogFormat:       cfg.GetString(keyLogFormat),
		File:            cfg.ConfigFileUsed(),
	}

	if _, err := loaded.Location(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func setDefaults(cfg *viper.Viper, dir string) {
	cfg.SetDefault(keyUsername, "")
	cfg.SetDefault(keyPassword, "")
	cfg.SetDefault(keyPassEntry, "")
	cfg.SetDefault(keyOpowerBaseURL, DefaultOpowerBaseURL)
	cfg.SetDefault(keyAuthBaseURL, DefaultAuthBaseURL)
	cfg.SetDefault(keyAuthAccountHost, "")
	cfg.SetDefault(keyAuthTimeout, DefaultAuthTimeout)
	cfg.SetDefault(keyAuthChromePath, "")
	cfg.SetDefault(keyAuthHeadful, false)
	cfg.SetDefault(keyCachePath, filepath.Join(dir, cacheFile))
	cfg.SetDefault(keyQueryTimezone, DefaultTimezone)
	cfg.SetDefault(keyHTTPTimeout, DefaultHTTPTimeout)
	cfg.SetDefault(keyServerAddr, DefaultServerAddr)
	cfg.SetDefault(keyLogLevel, "")
	cfg.SetDefault(keyLogFormat, "")
}

// bindEnv maps every key to NGM_<KEY>; username and password also accept
// the bare USERNAME and PASSWORD variables.
func bindEnv(cfg *viper.Viper) error {
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if err := cfg.BindEnv(keyUsername, envPrefix+"_USERNAME", "USERNAME"); err != nil {
		return fmt.Errorf("bind username env: %w", err)
	}
	if err := cfg.BindEnv(keyPassword, envPrefix+"_PASSWORD", "PASSWORD"); err != nil {
		return fmt.Errorf("bind password env: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve cache path: %w", err)
	}
	return filepath.Clean(absPath), nil
}
