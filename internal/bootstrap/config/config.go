package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"docforge/internal/bootstrap/logging"
	"docforge/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Generator GeneratorConfig `mapstructure:"generator"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// DispatchConfig selects how freshly created or retried jobs run:
// "immediate" (inline), "queued" (published to the job queue) or
// "manual" (left PENDING for an operator).
type DispatchConfig struct {
	Mode string `mapstructure:"mode"`
}

type QueueConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type GeneratorConfig struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := newViper(configFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if err := validateDispatchMode(cfg.Dispatch.Mode); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("dispatch_mode", cfg.Dispatch.Mode),
	)

	return cfg, nil
}

// Watch re-reads the config file on change and reports the new dispatch mode.
// Invalid modes are logged and skipped so a half-saved file cannot flip the
// dispatcher into an unknown state.
func Watch(ctx context.Context, configFile string, onDispatchMode func(mode string)) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if onDispatchMode == nil {
		return errors.New("dispatch mode callback is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := newViper(configFile)
	if err := v.ReadInConfig(); err != nil {
		return errs.Wrap(err, "read config for watch")
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
			return
		}

		mode := strings.ToLower(strings.TrimSpace(v.GetString("dispatch.mode")))
		if err := validateDispatchMode(mode); err != nil {
			logging.Warn(logCtx, "ignoring config change with invalid dispatch mode",
				slog.String("mode", mode), slog.Any("err", errs.Loggable(err)))
			return
		}

		logging.Info(logCtx, "dispatch mode reloaded",
			slog.String("file", event.Name), slog.String("mode", mode))
		onDispatchMode(mode)
	})
	v.WatchConfig()

	return nil
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "docforge")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".docforge/state/pipeline.sqlite")
	v.SetDefault("dispatch.mode", "manual")
	v.SetDefault("queue.url", "nats://127.0.0.1:4222")
	v.SetDefault("queue.subject", "docforge.jobs")
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("http.addr", ":8080")
}

func validateDispatchMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "immediate", "queued", "manual":
		return nil
	default:
		return errors.New("dispatch.mode must be one of immediate, queued, manual")
	}
}
