package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/database"
	"github.com/sagarc03/userload/randomuser"
	"github.com/sagarc03/userload/transform"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for userload.
type Config struct {
	Env       string          `mapstructure:"env" yaml:"env"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Source    SourceConfig    `mapstructure:"source" yaml:"source"`
	Transform TransformConfig `mapstructure:"transform" yaml:"transform"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
	State     StateConfig     `mapstructure:"state" yaml:"state"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// DatabaseConfig holds the PostgreSQL server and target table.
type DatabaseConfig struct {
	userload.Credentials `mapstructure:",squash" yaml:",inline"`

	Table string `mapstructure:"table" yaml:"table" validate:"required,identifier"`
}

// SourceConfig holds the random user API settings.
type SourceConfig struct {
	randomuser.Config `mapstructure:",squash" yaml:",inline"`

	Count   int           `mapstructure:"count" yaml:"count" validate:"required,min=1,max=5000"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
}

// TransformConfig selects what happens to users before they are stored.
type TransformConfig struct {
	HashPassword bool   `mapstructure:"hash_password" yaml:"hash_password"`
	Gender       string `mapstructure:"gender" yaml:"gender" validate:"omitempty,oneof=male female"`
	OlderThan    int64  `mapstructure:"older_than" yaml:"older_than" validate:"min=0"`
	ReplaceDots  bool   `mapstructure:"replace_dots" yaml:"replace_dots"`
}

// ExportConfig holds the optional CSV export. An empty path disables it.
type ExportConfig struct {
	CSV string `mapstructure:"csv" yaml:"csv"`
}

// StateConfig holds the location of the last_active_db state file.
type StateConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required,endswith=.json"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// DatabaseSettings returns the settings used by the database package.
func (c *Config) DatabaseSettings() database.Config {
	return database.Config{Credentials: c.Database.Credentials, Table: c.Database.Table}
}

// TransformOptions returns the options passed to transform.Apply.
func (c *Config) TransformOptions() transform.Options {
	opts := transform.Options{
		Gender:      c.Transform.Gender,
		OlderThan:   c.Transform.OlderThan,
		ReplaceDots: c.Transform.ReplaceDots,
	}
	if c.Transform.HashPassword {
		opts.HashColumns = []string{transform.PasswordColumn}
	}
	return opts
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	r := *c
	if r.Database.Password != "" {
		r.Database.Password = "********"
	}
	return r
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-host":   "database.host",
	"db-port":   "database.port",
	"db-user":   "database.user",
	"table":     "database.table",
	"count":     "source.count",
	"seed":      "source.seed",
	"csv":       "export.csv",
	"state":     "state.path",
	"log-level": "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// needs one so AutomaticEnv can find it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.admin_database", userload.DefaultAdminDatabase)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.table", userload.DefaultTable)

	v.SetDefault("source.endpoint", randomuser.DefaultEndpoint)
	v.SetDefault("source.seed", "")
	v.SetDefault("source.nationalities", []string{})
	v.SetDefault("source.count", 100)
	v.SetDefault("source.timeout", randomuser.DefaultTimeout)

	v.SetDefault("transform.hash_password", true)
	v.SetDefault("transform.gender", "male")
	v.SetDefault("transform.older_than", 30)
	v.SetDefault("transform.replace_dots", true)

	v.SetDefault("export.csv", "")

	v.SetDefault("state.path", "state.json")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	const op = "load config"

	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix("USERLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, userload.NewError(userload.KindConfigLoad, op, fmt.Errorf("unmarshal config: %w", err))
	}

	if err := userload.NewValidator().Struct(&cfg); err != nil {
		return nil, userload.NewError(userload.KindConfigLoad, op, fmt.Errorf("validate config: %w", err))
	}

	return &cfg, nil
}
