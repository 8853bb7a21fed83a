// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"marketplace-hub/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = time.Minute

// StockSweeper realigns product status with stock.
type StockSweeper interface {
	SweepStockStatus(ctx context.Context) (int64, error)
}

// SweepRecorder is told about every sweep run.
type SweepRecorder interface {
	StockSweep(changed int64, err error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	cl := cronLogger{l: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// AddStockSweep registers the stock status sweep on spec, e.g. "@every 5m" or "*/10 * * * *".
func (s *Scheduler) AddStockSweep(spec string, sweeper StockSweeper, rec SweepRecorder) error {
	if _, err := s.cron.AddFunc(spec, stockSweepJob(s.log, sweeper, rec)); err != nil {
		return fmt.Errorf("schedule stock sweep %q: %w", spec, err)
	}
	s.log.Info("stock sweep scheduled", zap.String("spec", spec))
	return nil
}

func stockSweepJob(log *zap.Logger, sweeper StockSweeper, rec SweepRecorder) func() {
	log = log.With(zap.String("job", "stock_sweep"))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		ctx = logger.ContextWithLogger(ctx, log)

		start := time.Now()
		changed, err := sweeper.SweepStockStatus(ctx)
		if rec != nil {
			rec.StockSweep(changed, err)
		}
		if err != nil {
			log.Error("stock sweep failed", zap.Error(err))
			return
		}
		log.Info("stock sweep finished",
			zap.Int64("changed", changed),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
