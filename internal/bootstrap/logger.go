package bootstrap

import (
	"browser-automator/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(conf *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if conf.AppConfig.Debug {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.DisableStacktrace = true

	// The console owns stdout in console mode.
	if conf.AppConfig.Mode == config.ModeConsole {
		zapConfig.OutputPaths = []string{"stderr"}
	}

	if level, err := zapcore.ParseLevel(conf.AppConfig.LogLevel); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("service", serviceName),
		zap.String("mode", conf.AppConfig.Mode),
	), nil
}
