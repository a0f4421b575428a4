package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Job calls its tick function on a fixed period until closed.
// Ticks never overlap: a tick that fires while the previous one is still running is dropped.
type Job struct {
	ticker   clockwork.Ticker
	done     chan struct{}
	stopped  chan struct{}
	cancelFn context.CancelFunc
	once     sync.Once
}

func NewJob(clock clockwork.Clock, interval time.Duration, tick func(ctx context.Context, job *Job)) *Job {
	ctx, cancelFunc := context.WithCancel(context.Background())

	j := &Job{
		ticker:   clock.NewTicker(interval),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		cancelFn: cancelFunc,
	}

	go func() {
		defer close(j.stopped)
		for {
			select {
			case <-j.ticker.Chan():
				// done may have been closed while the tick was pending
				select {
				case <-j.done:
					return
				default:
				}
				tick(ctx, j)
				j.dropPendingTick()
			case <-j.done:
				return
			}
		}
	}()

	return j
}

// dropPendingTick discards the tick the ticker buffered while the previous one was running.
func (j *Job) dropPendingTick() {
	select {
	case <-j.ticker.Chan():
	default:
	}
}

// Close stops the job without waiting for a running tick; use Done for that.
// It is safe to call more than once.
func (j *Job) Close() error {
	j.once.Do(func() {
		j.ticker.Stop()
		close(j.done)
		j.cancelFn()
	})
	return nil
}

// Done is closed once the job goroutine has exited.
func (j *Job) Done() <-chan struct{} {
	return j.stopped
}
