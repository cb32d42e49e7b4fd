package config

import (
    "errors"
    "fmt"
    "io/fs"
    "os"
    "time"

    "github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
    LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
    HTTP     HTTP    `yaml:"http"`
    Session  Session `yaml:"session"`
    Events   Events  `yaml:"events"`
}

type HTTP struct {
    Addr              string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
    ReadHeaderTimeout time.Duration `yaml:"read-header-timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
    ShutdownTimeout   time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Session controls how long an untouched game is kept in memory.
type Session struct {
    MaxIdle       time.Duration `yaml:"max-idle" env:"SESSION_MAX_IDLE" env-default:"1h"`
    SweepInterval time.Duration `yaml:"sweep-interval" env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`
}

type Events struct {
    Heartbeat time.Duration `yaml:"heartbeat" env:"EVENTS_HEARTBEAT" env-default:"15s"`
}

// Load reads the YAML file at path, with environment overrides. A missing
// file is not an error; the environment and defaults are used instead.
func Load(path string) (*Config, error) {
    config := &Config{}

    if path != "" {
        _, err := os.Stat(path)
        switch {
        case err == nil:
            if err := cleanenv.ReadConfig(path, config); err != nil {
                return nil, fmt.Errorf("unable to load config file: %w", err)
            }
            return config, config.validate()
        case !errors.Is(err, fs.ErrNotExist):
            return nil, fmt.Errorf("unable to stat config file: %w", err)
        }
    }

    if err := cleanenv.ReadEnv(config); err != nil {
        return nil, fmt.Errorf("unable to read config from environment: %w", err)
    }
    return config, config.validate()
}

// MustLoad - load all configurations, panicking on error.
func MustLoad(path string) *Config {
    config, err := Load(path)
    if err != nil {
        panic(err)
    }
    return config
}

func (that *Config) validate() error {
    if that.Session.MaxIdle <= 0 {
        return fmt.Errorf("session.max-idle must be positive, got %s", that.Session.MaxIdle)
    }
    if that.Session.SweepInterval <= 0 {
        return fmt.Errorf("session.sweep-interval must be positive, got %s", that.Session.SweepInterval)
    }
    if that.Events.Heartbeat <= 0 {
        return fmt.Errorf("events.heartbeat must be positive, got %s", that.Events.Heartbeat)
    }
    return nil
}
