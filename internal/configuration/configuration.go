// Package configuration loads the rawos settings from an environment file,
// with the process environment taking precedence.
package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
)

const (
	KeyLogLevel   = "RAWOS_LOG_LEVEL"
	KeyUI         = "RAWOS_UI"
	KeyVerifyCopy = "RAWOS_VERIFY_COPY"
	KeyDirMode    = "RAWOS_DIR_MODE"
)

// DefaultFile is read when no other configuration file is given.
const DefaultFile = "/etc/rawos.env"

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

type envProvider interface {
	LookupEnv(key string) (string, bool)
}

// Config holds the typed settings.
type Config struct {
	LogLevel   slog.Level
	UI         bool
	VerifyCopy bool
	DirMode    uint32
}

// Defaults returns the settings used for every key that is not set.
func Defaults() *Config {
	return &Config{
		LogLevel:   slog.LevelInfo,
		UI:         true,
		VerifyCopy: false,
		DirMode:    0o777,
	}
}

// Handler loads the [Config] from a configuration file and the environment.
type Handler struct {
	ConfigReader genericConfigProvider
	EnvReader    envProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(configReader genericConfigProvider, envReader envProvider) *Handler {
	return &Handler{
		ConfigReader: configReader,
		EnvReader:    envReader,
	}
}

// Load reads the given files and maps the known keys onto [Defaults]. Files
// that do not exist are treated as empty.
func (c *Handler) Load(filenames ...string) (*Config, error) {
	envMap, err := c.ConfigReader.Read(filenames...)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("(config) failed to read configuration: %w", err)
		}
		envMap = map[string]string{}

		slog.Debug("Configuration file not found, using defaults",
			"files", filenames,
		)
	}

	cfg := Defaults()

	if value := c.lookup(envMap, KeyLogLevel); value != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(value)); err != nil {
			return nil, fmt.Errorf("(config) %w: %s=%q", ErrInvalidValue, KeyLogLevel, value)
		}
	}

	if cfg.UI, err = c.mapKeyToBool(envMap, KeyUI, cfg.UI); err != nil {
		return nil, err
	}

	if cfg.VerifyCopy, err = c.mapKeyToBool(envMap, KeyVerifyCopy, cfg.VerifyCopy); err != nil {
		return nil, err
	}

	if cfg.DirMode, err = c.mapKeyToMode(envMap, KeyDirMode, cfg.DirMode); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Handler) lookup(envMap map[string]string, key string) string {
	if c.EnvReader != nil {
		if value, exists := c.EnvReader.LookupEnv(key); exists {
			return strings.TrimSpace(value)
		}
	}

	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

func (c *Handler) mapKeyToBool(envMap map[string]string, key string, fallback bool) (bool, error) {
	value := c.lookup(envMap, key)
	if value == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("(config) %w: %s=%q", ErrInvalidValue, key, value)
	}

	return b, nil
}

func (c *Handler) mapKeyToMode(envMap map[string]string, key string, fallback uint32) (uint32, error) {
	value := c.lookup(envMap, key)
	if value == "" {
		return fallback, nil
	}

	mode, err := ParseMode(value)
	if err != nil {
		return fallback, fmt.Errorf("(config) %w: %s=%q", ErrInvalidValue, key, value)
	}

	return mode, nil
}

// ParseMode parses an octal permission mode such as 755 or 0o644.
func ParseMode(value string) (uint32, error) {
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0o"), "0O")

	mode, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("(config-mode) %w", err)
	}
	if mode > 0o7777 {
		return 0, fmt.Errorf("(config-mode) %w: %o", ErrModeRange, mode)
	}

	return uint32(mode), nil
}
