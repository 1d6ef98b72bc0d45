// Package logger builds zap loggers and carries request-scoped loggers in contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/paramsearch/internal/version"
)

// Environments accepted by NewLogger.
const (
	EnvProd   = "prod"
	EnvLocal  = "local"
	EnvDev    = "dev"
	EnvDocker = "docker"
	EnvTest   = "test"
	// EnvCLI writes warnings and errors to stderr so stdout stays machine-readable.
	EnvCLI = "cli"
)

// NewLogger creates the paramsearch logger for env.
// prod emits JSON; local, dev and docker emit colored console lines.
// level, when non-empty, overrides the environment's default level.
func NewLogger(env string, level ...string) (*zap.Logger, error) {
	cfg, err := configFor(env)
	if err != nil {
		return nil, err
	}
	if len(level) > 0 && level[0] != "" {
		lvl, err := zapcore.ParseLevel(level[0])
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level[0], err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if env == EnvCLI {
		return l, nil
	}
	return l.Named("paramsearch").With(
		zap.String("env", env),
		zap.String("version", version.Version),
	), nil
}

func configFor(env string) (zap.Config, error) {
	switch env {
	case EnvProd:
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.MessageKey = "msg"
		return cfg, nil
	case EnvLocal, EnvDev, EnvDocker:
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg, nil
	case EnvTest:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		return cfg, nil
	case EnvCLI:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.EncoderConfig.TimeKey = ""
		cfg.EncoderConfig.CallerKey = ""
		cfg.OutputPaths = []string{"stderr"}
		cfg.DisableStacktrace = true
		return cfg, nil
	default:
		return zap.Config{}, fmt.Errorf("unknown environment %q for logger", env)
	}
}
