package history

import (
	"context"

	"go.uber.org/zap"

	"github.com/isdmx/questbox/config"
	"github.com/isdmx/questbox/protocol"
)

// History is the read/write surface shared by Store and Nop.
type History interface {
	Record(ctx context.Context, code string, outcome protocol.Outcome) error
	Recent(ctx context.Context, limit int) ([]Submission, error)
	Close() error
}

// NewFromConfig opens the configured store, or returns Nop when history
// is disabled.
func NewFromConfig(logger *zap.Logger, cfg *config.Config) (History, error) {
	if !cfg.History.Enabled {
		logger.Info("submission history disabled")
		return Nop{}, nil
	}

	store, err := Open(cfg.History.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("submission history opened", zap.String("path", cfg.History.DBPath))
	return store, nil
}
