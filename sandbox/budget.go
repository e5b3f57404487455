package sandbox

import (
	"io"
	"sync"
)

// outputBudget is a byte allowance shared by a process's stdout and stderr.
// Once the allowance is spent, further output is discarded (so the child
// never blocks on a full pipe) and onExceed fires exactly once.
type outputBudget struct {
	mu        sync.Mutex
	remaining int
	limited   bool
	over      bool
	onExceed  func()
}

func newOutputBudget(limit int, onExceed func()) *outputBudget {
	return &outputBudget{
		remaining: limit,
		limited:   limit > 0,
		onExceed:  onExceed,
	}
}

func (b *outputBudget) writer(dst io.Writer) io.Writer {
	return &budgetWriter{budget: b, dst: dst}
}

func (b *outputBudget) exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.over
}

// take reserves up to n bytes and reports how many may be written.
func (b *outputBudget) take(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.limited {
		return n
	}
	if b.over {
		return 0
	}
	if n <= b.remaining {
		b.remaining -= n
		return n
	}

	allowed := b.remaining
	b.remaining = 0
	b.over = true
	if b.onExceed != nil {
		b.onExceed()
	}
	return allowed
}

type budgetWriter struct {
	budget *outputBudget
	dst    io.Writer
}

func (w *budgetWriter) Write(p []byte) (int, error) {
	allowed := w.budget.take(len(p))
	if allowed > 0 {
		if _, err := w.dst.Write(p[:allowed]); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
