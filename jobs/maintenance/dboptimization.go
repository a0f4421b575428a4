package maintenance

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Optimizer interface {
	Optimize(ctx context.Context) error
}

// DbOptimizationJob periodically lets SQLite refresh its query planner statistics.
type DbOptimizationJob struct {
	ticker clockwork.Ticker
	done   chan struct{}
}

func NewDbOptimizationJob(optimizer Optimizer, clock clockwork.Clock, interval time.Duration, maxDuration time.Duration) *DbOptimizationJob {
	ticker := clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				ctx, cancelFunc := context.WithTimeout(context.Background(), maxDuration)
				if err := optimizer.Optimize(ctx); err != nil {
					log.Warn().Err(err).Msg("failed to optimize database")
				}
				cancelFunc()
			case <-done:
				return
			}
		}
	}()

	return &DbOptimizationJob{
		ticker: ticker,
		done:   done,
	}
}

func (j *DbOptimizationJob) Close() error {
	j.ticker.Stop()
	close(j.done)
	return nil
}
