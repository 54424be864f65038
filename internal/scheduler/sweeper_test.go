package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls   atomic.Int32
	block   chan struct{}
	err     error
	perCall int
}

func (f *fakeExpirer) ExpireAuctions(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.perCall, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeperRunsImmediatelyOnStart(t *testing.T) {
	expirer := &fakeExpirer{perCall: 1}
	sweeper := NewSweeper(expirer, time.Hour, testLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop()

	require.Eventually(t, func() bool {
		return expirer.calls.Load() == 1
	}, time.Second, 5*time.Millisecond, "expected an immediate sweep on start")
}

func TestSweeperTicks(t *testing.T) {
	expirer := &fakeExpirer{}
	sweeper := NewSweeper(expirer, 10*time.Millisecond, testLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop()

	require.Eventually(t, func() bool {
		return expirer.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond, "expected repeated sweeps")
}

func TestSweeperStopWaitsForLoop(t *testing.T) {
	expirer := &fakeExpirer{}
	sweeper := NewSweeper(expirer, 10*time.Millisecond, testLogger())

	sweeper.Start(context.Background())
	sweeper.Stop()

	after := expirer.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, expirer.calls.Load(), "no sweeps after Stop")

	// Stop on a stopped sweeper is a no-op
	sweeper.Stop()
}

func TestSweeperSkipsOverlappingSweep(t *testing.T) {
	expirer := &fakeExpirer{block: make(chan struct{})}
	sweeper := NewSweeper(expirer, 10*time.Millisecond, testLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop()

	// The first sweep blocks; ticks keep firing but must not start another
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), expirer.calls.Load())

	close(expirer.block)
	require.Eventually(t, func() bool {
		return expirer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "sweeping resumes once the slow sweep finishes")
}

func TestSweeperRetriesAfterError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("db down")}
	sweeper := NewSweeper(expirer, 10*time.Millisecond, testLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop()

	require.Eventually(t, func() bool {
		return expirer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "a failed sweep must not stop the loop")
}
