package logging

import (
    "fmt"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New builds a JSON production logger at the given level ("debug", "info",
// "warn", "error", ...).
func New(level string) (*zap.Logger, error) {
    lvl, err := zapcore.ParseLevel(level)
    if err != nil {
        return nil, fmt.Errorf("invalid log level %q: %w", level, err)
    }
    cfg := zap.NewProductionConfig()
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    cfg.EncoderConfig.TimeKey = "time"
    cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    return cfg.Build()
}
