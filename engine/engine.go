package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/isdmx/questbox/config"
	"github.com/isdmx/questbox/harness"
	"github.com/isdmx/questbox/protocol"
	"github.com/isdmx/questbox/sandbox"
	"github.com/isdmx/questbox/validator"
)

// DefaultMaxConcurrency is the number of guests allowed to run at once
// when no limit is configured.
const DefaultMaxConcurrency = 8

// maxStderrBytes bounds the stderr excerpt attached to an outcome.
const maxStderrBytes = 4096

// Request is one submission.
type Request struct {
	Code    string         `json:"code"`
	Context map[string]any `json:"context,omitempty"`
}

// Checker statically validates source code.
type Checker interface {
	Validate(code string) validator.Result
}

// Recorder receives every classified outcome.
type Recorder interface {
	Record(ctx context.Context, code string, outcome protocol.Outcome) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, protocol.Outcome) error { return nil }

// Engine runs submissions end to end.
type Engine struct {
	logger       *zap.Logger
	checker      Checker
	runner       sandbox.Runner
	recorder     Recorder
	sem          *semaphore.Weighted
	newSentinels func() protocol.Sentinels
	stats        counters
}

// Option defines a functional option for Engine
type Option func(*Engine)

// WithRecorder sets where outcomes are recorded
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithMaxConcurrency caps the number of guests running at once
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithSentinels overrides the per-execution sentinel source
func WithSentinels(fn func() protocol.Sentinels) Option {
	return func(e *Engine) {
		e.newSentinels = fn
	}
}

// New creates an Engine.
func New(logger *zap.Logger, checker Checker, runner sandbox.Runner, opts ...Option) *Engine {
	e := &Engine{
		logger:       logger.Named("engine"),
		checker:      checker,
		runner:       runner,
		recorder:     nopRecorder{},
		sem:          semaphore.NewWeighted(DefaultMaxConcurrency),
		newSentinels: protocol.NewSentinels,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig creates an Engine using the configured concurrency cap.
func NewFromConfig(logger *zap.Logger, cfg *config.Config, checker Checker, runner sandbox.Runner, recorder Recorder) *Engine {
	return New(logger, checker, runner,
		WithRecorder(recorder),
		WithMaxConcurrency(cfg.Sandbox.MaxConcurrency))
}

// Check validates code without running it.
func (e *Engine) Check(code string) validator.Result {
	return e.checker.Validate(code)
}

// Stats returns a snapshot of the execution counters.
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

// ExecuteUserCode runs req.Code with req.Context bound as variables and
// returns the classified outcome. A non-nil error means the execution
// could not be carried out at all (bad context value, artifact or spawn
// failure, cancelled while waiting for a slot).
func (e *Engine) ExecuteUserCode(ctx context.Context, req Request) (protocol.Outcome, error) {
	e.stats.total.Add(1)
	start := time.Now()

	check := e.checker.Validate(req.Code)
	if !check.Valid {
		outcome := protocol.Rejected(check.Error)
		outcome.Duration = time.Since(start)
		e.finish(ctx, req, outcome)
		return outcome, nil
	}

	sentinels := e.newSentinels()
	program, err := harness.BuildProgram(req.Code, req.Context, sentinels)
	if err != nil {
		e.stats.failed.Add(1)
		return protocol.Outcome{}, fmt.Errorf("failed to build program: %w", err)
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		e.stats.failed.Add(1)
		return protocol.Outcome{}, fmt.Errorf("waiting for an execution slot: %w", err)
	}
	e.stats.active.Add(1)
	out, err := e.runner.Run(ctx, program.Source)
	e.stats.active.Add(-1)
	e.sem.Release(1)

	var outcome protocol.Outcome
	switch {
	case errors.Is(err, sandbox.ErrTimedOut):
		outcome = protocol.TimedOut()
	case errors.Is(err, sandbox.ErrOutputTooLarge):
		outcome = protocol.OutputTooLarge()
	case err != nil:
		e.stats.failed.Add(1)
		e.logger.Error("execution failed", zap.Error(err))
		return protocol.Outcome{}, fmt.Errorf("failed to run program: %w", err)
	default:
		outcome = program.Sentinels.Decode(out.Stdout)
		outcome.Stderr = truncate(out.Stderr, maxStderrBytes)
	}
	outcome.Warning = check.Warning
	outcome.Duration = out.Duration

	e.finish(ctx, req, outcome)
	return outcome, nil
}

// finish counts, logs and records a classified outcome.
func (e *Engine) finish(ctx context.Context, req Request, outcome protocol.Outcome) {
	e.stats.count(outcome.Kind)

	fields := []zap.Field{
		zap.Stringer("kind", outcome.Kind),
		zap.Duration("duration", outcome.Duration),
		zap.Int("code_bytes", len(req.Code)),
	}
	if outcome.Result != nil {
		fields = append(fields, zap.String("action", outcome.Result.Action))
	}
	if outcome.Kind == protocol.KindMalformedOutput {
		e.logger.Warn("guest produced no result line", fields...)
	} else {
		e.logger.Info("execution finished", fields...)
	}

	// Record even when the caller has gone away.
	if err := e.recorder.Record(context.WithoutCancel(ctx), req.Code, outcome); err != nil {
		e.logger.Warn("failed to record submission", zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && cut > n-utf8.UTFMax && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n[truncated]"
}
