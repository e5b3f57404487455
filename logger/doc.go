// Package logger provides structured logging capabilities.
//
// The logger package builds the zap logger shared by every questbox
// component. Components derive their own named child loggers.
//
// Usage:
//
//	log, err := logger.New("production", "info")
//	if err != nil {
//	    panic(err)
//	}
//	log.Named("engine").Info("execution finished", zap.Duration("duration", d))
package logger
