package engine

import (
	"sync/atomic"

	"github.com/isdmx/questbox/protocol"
)

// Stats is a snapshot of the engine counters.
type Stats struct {
	Total             int64 `json:"total"`
	Active            int64 `json:"active"`
	Rejected          int64 `json:"rejected"`
	Succeeded         int64 `json:"succeeded"`
	ApplicationErrors int64 `json:"application_errors"`
	TimedOut          int64 `json:"timed_out"`
	OutputTooLarge    int64 `json:"output_too_large"`
	Malformed         int64 `json:"malformed"`
	Failed            int64 `json:"failed"`
}

type counters struct {
	total             atomic.Int64
	active            atomic.Int64
	rejected          atomic.Int64
	succeeded         atomic.Int64
	applicationErrors atomic.Int64
	timedOut          atomic.Int64
	outputTooLarge    atomic.Int64
	malformed         atomic.Int64
	failed            atomic.Int64
}

func (c *counters) count(kind protocol.Kind) {
	switch kind {
	case protocol.KindSuccess:
		c.succeeded.Add(1)
	case protocol.KindApplicationError:
		c.applicationErrors.Add(1)
	case protocol.KindTimedOut:
		c.timedOut.Add(1)
	case protocol.KindOutputTooLarge:
		c.outputTooLarge.Add(1)
	case protocol.KindMalformedOutput:
		c.malformed.Add(1)
	case protocol.KindRejected:
		c.rejected.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Total:             c.total.Load(),
		Active:            c.active.Load(),
		Rejected:          c.rejected.Load(),
		Succeeded:         c.succeeded.Load(),
		ApplicationErrors: c.applicationErrors.Load(),
		TimedOut:          c.timedOut.Load(),
		OutputTooLarge:    c.outputTooLarge.Load(),
		Malformed:         c.malformed.Load(),
		Failed:            c.failed.Load(),
	}
}
