package logging

import "go.uber.org/zap"

// Sugar is the process-wide sugared logger. Initialize must be called once
// before any other package logs through it.
var Sugar *zap.SugaredLogger

func Initialize(env string) error {
	var (
		logger *zap.Logger
		err    error
	)

	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}

	Sugar = logger.Sugar()
	return nil
}

// Sync flushes buffered log entries; call on shutdown.
func Sync() {
	if Sugar != nil {
		_ = Sugar.Sync()
	}
}
