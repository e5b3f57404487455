package sandbox

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically removes program artifacts older than a maximum
// age. Runners clean up after themselves; the sweeper only catches files
// left behind when the server itself died mid-execution.
type Sweeper struct {
	logger   *zap.Logger
	fs       FileSystem
	dir      string
	schedule string
	maxAge   time.Duration
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// SweeperOption defines a functional option for Sweeper
type SweeperOption func(*Sweeper)

// WithSweeperFileSystem sets the FileSystem the sweeper scans
func WithSweeperFileSystem(fs FileSystem) SweeperOption {
	return func(s *Sweeper) {
		s.fs = fs
	}
}

// WithSweeperClock overrides the time source
func WithSweeperClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.now = now
	}
}

// NewSweeper creates a sweeper for dir ("" means the OS temp dir).
func NewSweeper(logger *zap.Logger, dir, schedule string, maxAge time.Duration, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		logger:   logger.Named("sweeper"),
		fs:       RealFileSystem{},
		dir:      scratchDir(dir),
		schedule: schedule,
		maxAge:   maxAge,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules Sweep. An empty schedule disables the sweeper.
func (s *Sweeper) Start() error {
	if s.schedule == "" {
		s.logger.Info("artifact sweeper disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))
	if _, err := c.AddFunc(s.schedule, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("artifact sweeper started",
		zap.String("dir", s.dir),
		zap.String("schedule", s.schedule),
		zap.Duration("max_age", s.maxAge))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Sweep removes stale artifacts once and returns how many were removed.
func (s *Sweeper) Sweep() int {
	matches, err := s.fs.Glob(artifactGlob(s.dir))
	if err != nil {
		s.logger.Error("failed to list artifacts", zap.String("dir", s.dir), zap.Error(err))
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, path := range matches {
		info, err := s.fs.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("failed to stat artifact", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		if info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove stale artifact", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed stale artifacts", zap.Int("count", removed))
	}
	return removed
}
