// Package logger builds the application's zap logger and hands out the
// request-scoped child that the request ID middleware stores on the Echo
// context.
package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextKey is the echo.Context key holding the request-scoped logger.
const ContextKey = "logger"

// New builds a JSON production logger when env is "production" and a
// colored console logger otherwise, and installs it as zap's global.
func New(env, level, service string) (*zap.Logger, error) {
	lvl := parseLevel(level)
	fields := zap.Fields(
		zap.String("service", service),
		zap.String("environment", env),
	)

	var (
		log *zap.Logger
		err error
	)
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		log, err = cfg.Build(fields)
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		log, err = cfg.Build(fields)
	}
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(log)
	return log, nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// FromEcho retrieves the request-scoped logger, falling back to the global
// one for requests that bypassed the request ID middleware.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(ContextKey).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}
