// Package progress carries forward polisher.cpp's logger_->bar(...)
// ticks -- printed during breaking-point finding and consensus
// generation -- as a log.Logger-based notifier instead of raw
// fprintf(stderr, ...), so the CLI can route it through whatever
// destination cmd/ configures the logger with.
package progress

import "log"

// Bar reports coarse-grained progress for one phase of the pipeline
// (breaking-point finding, window consensus): it logs every total/10
// completed tasks (every task when total < 20), and always on the last
// one.
type Bar struct {
	logger *log.Logger
	label  string
	total  int
	done   int
	nextAt int
}

// New returns a Bar for a phase of total independent tasks. A nil
// logger silences all output (useful in tests and for total == 0
// phases that never tick).
func New(logger *log.Logger, label string, total int) *Bar {
	b := &Bar{logger: logger, label: label, total: total}
	b.nextAt = b.step()
	return b
}

func (b *Bar) step() int {
	if b.total <= 0 {
		return 0
	}
	s := b.total / 10
	if s < 1 {
		s = 1
	}
	return s
}

// Tick marks one task complete and logs when it crosses the next decile.
func (b *Bar) Tick() {
	b.done++
	if b.total <= 0 || b.logger == nil {
		return
	}
	if b.done >= b.nextAt || b.done == b.total {
		pct := 100 * b.done / b.total
		b.logger.Printf("%s: %d%% (%d/%d)", b.label, pct, b.done, b.total)
		b.nextAt += b.step()
	}
}
