// Package logger builds the process-wide zap logger.
package logger

import (
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New returns a JSON production logger when env is "prod" and a colourised
// development logger otherwise.
func New(env string) (*zap.Logger, error) {
    if env == "prod" {
        cfg := zap.NewProductionConfig()
        cfg.EncoderConfig.TimeKey = "ts"
        cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
        return cfg.Build()
    }
    cfg := zap.NewDevelopmentConfig()
    cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    return cfg.Build()
}
