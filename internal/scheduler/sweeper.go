package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Expirer resolves ended auctions. Implemented by the auction service.
type Expirer interface {
	ExpireAuctions(ctx context.Context) (int, error)
}

// Sweeper periodically resolves auctions whose end time has passed. It
// runs one sweep immediately on start and then on a fixed interval. A
// sweep error is logged and retried on the next tick.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *slog.Logger

	inFlight atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a new expiry sweeper
func NewSweeper(expirer Expirer, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the sweep loop and blocks until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Resolve anything that ended while the process was down
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Start launches the sweep loop in the background. Stop cancels it and
// waits for the loop to exit.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.logger.Warn("Sweeper already running")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		_ = s.Run(runCtx)
	}()
}

// Stop cancels the background loop started by Start and waits for it
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// sweep runs one expiry pass. The in-flight guard keeps a slow sweep
// from overlapping with the next tick's.
func (s *Sweeper) sweep(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping sweep: previous sweep still in flight")
		return
	}
	defer s.inFlight.Store(false)

	processed, err := s.expirer.ExpireAuctions(ctx)
	if err != nil {
		s.logger.Error("Expiry sweep failed", "error", err)
		return
	}
	if processed > 0 {
		s.logger.Info("Resolved expired auctions", "count", processed)
	}
}
