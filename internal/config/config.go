// Package config loads accountkeeper settings from defaults, an optional YAML
// file, ACCOUNTKEEPER_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iudanet/accountkeeper/internal/client/storage"
	"github.com/iudanet/accountkeeper/internal/validation"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "accountkeeper"

// Storage backends
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config корневая конфигурация
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Log        LogConfig        `mapstructure:"log"`
	Validation ValidationConfig `mapstructure:"validation"`
}

// StorageConfig описывает хранилище коллекции учетных записей
type StorageConfig struct {
	Backend    string `mapstructure:"backend" validate:"required,oneof=bolt sqlite memory"`
	Path       string `mapstructure:"path" validate:"required_unless=Backend memory"`
	Key        string `mapstructure:"key" validate:"required"`
	Passphrase string `mapstructure:"passphrase"` // Passphrase если задан, значения шифруются
}

// LogConfig настройки логирования
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// ValidationConfig лимиты длины полей
type ValidationConfig struct {
	MaxLabelsLength   int `mapstructure:"max_labels_length" validate:"gt=0"`
	MaxLoginLength    int `mapstructure:"max_login_length" validate:"gt=0"`
	MaxPasswordLength int `mapstructure:"max_password_length" validate:"gt=0"`
}

// Defaults returns the built-in defaults keyed by viper key
func Defaults() map[string]any {
	rules := validation.DefaultRules()
	return map[string]any{
		"storage.backend":                BackendBolt,
		"storage.path":                   "accounts.db",
		"storage.key":                    storage.DefaultKey,
		"storage.passphrase":             "",
		"log.level":                      "info",
		"validation.max_labels_length":   rules.MaxLabelsLength,
		"validation.max_login_length":    rules.MaxLoginLength,
		"validation.max_password_length": rules.MaxPasswordLength,
	}
}

// FlagBindings maps viper keys to the command-line flags that override them
var FlagBindings = map[string]string{
	"storage.backend":    "backend",
	"storage.path":       "db",
	"storage.passphrase": "passphrase",
	"log.level":          "log-level",
}

// Load builds the configuration. configFile may be empty; a missing
// explicitly named file is an error. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("accountkeeper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range FlagBindings {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct constraints
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Rules returns the validation limits
func (c *Config) Rules() validation.Rules {
	return validation.Rules{
		MaxLabelsLength:   c.Validation.MaxLabelsLength,
		MaxLoginLength:    c.Validation.MaxLoginLength,
		MaxPasswordLength: c.Validation.MaxPasswordLength,
	}
}

// SlogLevel converts the configured level name
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger creates a text logger writing to w at the configured level
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
