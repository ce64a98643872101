// =============================================================================
// rcli - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are resolved by
// viper with the following precedence (highest first):
//
//   1. Command-line flags bound to a key
//   2. RCLI_* environment variables (RCLI_CSV_DELIMITER, RCLI_LOG_LEVEL, ...)
//   3. The configuration file (.rcli.yaml or --config)
//   4. The defaults registered by SetDefaults
//
// A .env file in the working directory is loaded into the environment first.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/rcli/internal/csvparser"
	"github.com/ginjaninja78/rcli/internal/encoder"
	"github.com/ginjaninja78/rcli/internal/genpass"
	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable viper consults.
const EnvPrefix = "RCLI"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	CSV     CSVSettings     `mapstructure:"csv"`
	Genpass GenpassSettings `mapstructure:"genpass"`
	Log     LogSettings     `mapstructure:"log"`
	Server  ServerSettings  `mapstructure:"server"`
}

// CSVSettings contains settings for parsing input files and encoding output.
type CSVSettings struct {
	// Delimiter is the field separator token.
	// Common values: "," (comma), "|" (pipe), "\t" or "tab", ";"
	// Default: ","
	Delimiter string `mapstructure:"delimiter"`

	// Header reports whether the first row holds column names.
	// Default: true
	Header bool `mapstructure:"header"`

	// Encoding is the character encoding of the input.
	// Common values: "utf-8", "iso-8859-1", "windows-1252"
	// Default: "utf-8"
	Encoding string `mapstructure:"encoding"`

	// Format is the output encoding used when --format is not given.
	// Default: "json"
	Format string `mapstructure:"format"`
}

// GenpassSettings holds the password generator defaults.
type GenpassSettings struct {
	Length    int  `mapstructure:"length"`
	Uppercase bool `mapstructure:"uppercase"`
	Lowercase bool `mapstructure:"lowercase"`
	Digits    bool `mapstructure:"digits"`
	Symbols   bool `mapstructure:"symbols"`
}

// LogSettings controls the slog handler.
type LogSettings struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// ServerSettings configures the HTTP API started by `rcli serve`.
type ServerSettings struct {
	Addr string `mapstructure:"addr"`

	// RateLimit is the sustained number of requests per second per client IP.
	RateLimit float64 `mapstructure:"rate_limit"`

	// Burst is the number of requests a client may issue at once.
	Burst int `mapstructure:"burst"`

	// MaxBodyBytes bounds the size of an uploaded CSV body.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GenpassOptions converts the settings into generator options.
func (s GenpassSettings) GenpassOptions() genpass.Options {
	return genpass.Options{
		Length:    s.Length,
		Uppercase: s.Uppercase,
		Lowercase: s.Lowercase,
		Digits:    s.Digits,
		Symbols:   s.Symbols,
	}
}

// ParserSettings converts the settings into CSV parser settings.
func (s CSVSettings) ParserSettings() csvparser.Settings {
	return csvparser.Settings{
		Delimiter: s.Delimiter,
		Header:    s.Header,
		Encoding:  s.Encoding,
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

// SetDefaults registers every key with its default value. Registering the keys
// also lets AutomaticEnv resolve them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	csv := csvparser.DefaultSettings()
	v.SetDefault("csv.delimiter", csv.Delimiter)
	v.SetDefault("csv.header", csv.Header)
	v.SetDefault("csv.encoding", csv.Encoding)
	v.SetDefault("csv.format", encoder.JSON.String())

	pw := genpass.DefaultOptions()
	v.SetDefault("genpass.length", pw.Length)
	v.SetDefault("genpass.uppercase", pw.Uppercase)
	v.SetDefault("genpass.lowercase", pw.Lowercase)
	v.SetDefault("genpass.digits", pw.Digits)
	v.SetDefault("genpass.symbols", pw.Symbols)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.max_body_bytes", int64(10<<20))
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// ConfigureEnv enables RCLI_* environment overrides on v.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// ReadFile points v at a configuration file and reads it.
//
// PARAMETERS:
//   - v: The viper instance to populate.
//   - path: An explicit file path. Empty searches the working directory for
//     .rcli.yaml.
//
// RETURNS:
//   - The path of the file that was read, or "" if none was found.
//   - An error if an explicit file is missing or any file cannot be parsed.
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".rcli")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", types.NewConfigError("read config file", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load resolves the configuration held by v.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - A ConfigError if a value cannot be decoded or the log section is
//     invalid. Other sections are checked by their Validate methods.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, types.NewConfigError("decode config", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDefaults fills values a file or environment variable set to empty.
func applyDefaults(config *Config) {
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.CSV.Encoding == "" {
		config.CSV.Encoding = "utf-8"
	}
	if config.CSV.Format == "" {
		config.CSV.Format = encoder.JSON.String()
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}
}

// validate checks the sections every command depends on. The csv, genpass
// and server sections are checked by the commands that use them.
func validate(config *Config) error {
	return config.Log.Validate()
}

// Validate checks the log level and format.
func (s LogSettings) Validate() error {
	switch strings.ToLower(s.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Errorf("log.level: unknown level %q", s.Level))
	}
	switch strings.ToLower(s.Format) {
	case "text", "json":
	default:
		return invalid(fmt.Errorf("log.format: unknown format %q", s.Format))
	}
	return nil
}

// Validate checks the delimiter and output format. The error names the
// offending key.
func (s CSVSettings) Validate() error {
	if _, err := csvparser.ResolveDelimiter(s.Delimiter); err != nil {
		return invalid(fmt.Errorf("csv.delimiter: %w", err))
	}
	if _, err := encoder.ParseFormat(s.Format); err != nil {
		return invalid(fmt.Errorf("csv.format: %w", err))
	}
	return nil
}

// Validate checks the password length bounds.
func (s GenpassSettings) Validate() error {
	if s.Length < 1 || s.Length > genpass.MaxLength {
		return invalid(fmt.Errorf("genpass.length must be between 1 and %d, got %d", genpass.MaxLength, s.Length))
	}
	return nil
}

// Validate checks the rate limiter and body size settings.
func (s ServerSettings) Validate() error {
	if s.RateLimit <= 0 {
		return invalid(fmt.Errorf("server.rate_limit must be positive, got %v", s.RateLimit))
	}
	if s.Burst < 1 {
		return invalid(fmt.Errorf("server.burst must be at least 1, got %d", s.Burst))
	}
	if s.MaxBodyBytes < 1 {
		return invalid(fmt.Errorf("server.max_body_bytes must be positive, got %d", s.MaxBodyBytes))
	}
	return nil
}

func invalid(err error) error {
	return types.NewConfigError("invalid configuration", err)
}
