package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ScanFunc runs one detection and reconciliation pass.
type ScanFunc func(ctx context.Context) error

// Scheduler coalesces change notifications into debounced scans. Each
// relevant notification restarts a single quiet-period timer; when it fires,
// the scan runs on the scheduler's worker goroutine. A fire that arrives
// while a scan is running is queued, never run in parallel, and at most one
// scan is queued at a time.
type Scheduler struct {
	quiet   time.Duration
	clock   Clock
	markers func() []string
	onScan  ScanFunc
	logger  *log.Logger

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	closed  bool
	trigger chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewScheduler starts the worker. markers is consulted on every Notify, so it
// tracks registry changes.
func NewScheduler(quiet time.Duration, clock Clock, markers func() []string, onScan ScanFunc, logger *log.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		quiet:   quiet,
		clock:   clock,
		markers: markers,
		onScan:  onScan,
		logger:  logger,
		trigger: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.work()
	return s
}

// Notify schedules a scan when any event in the batch is relevant and
// reports whether it did.
func (s *Scheduler) Notify(events []Event) bool {
	markers := s.markers()
	for _, e := range events {
		if Relevant(e, markers) {
			s.logger.Debug("relevant change", "path", e.Path, "op", e.Op)
			s.schedule()
			return true
		}
	}
	return false
}

// RegistryChanged schedules a scan unconditionally.
func (s *Scheduler) RegistryChanged() {
	s.logger.Debug("checker registry changed")
	s.schedule()
}

// Trigger schedules a scan, as if a relevant change had been seen.
func (s *Scheduler) Trigger() {
	s.schedule()
}

// Pending reports whether a quiet-period timer is running.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.quiet, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	// A timer that was replaced may still fire if Stop lost the race.
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	select {
	case s.trigger <- struct{}{}:
	default:
		s.logger.Debug("scan already queued")
	}
}

func (s *Scheduler) work() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.trigger:
			if s.ctx.Err() != nil {
				return
			}
			if err := s.onScan(s.ctx); err != nil && s.ctx.Err() == nil {
				s.logger.Warn("scan failed", "err", err)
			}
		}
	}
}

// Close cancels a pending timer and any running scan, then waits for the
// worker to exit. No scan starts after Close returns.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.mu.Unlock()

		s.cancel()
		<-s.done
	})
}
