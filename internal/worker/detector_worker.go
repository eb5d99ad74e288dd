package worker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/queuewise/queue-intel/internal/config"
	"github.com/queuewise/queue-intel/internal/service"
)

// DetectorWorker drives the anomaly sweep on a fixed schedule. The
// sweep itself never retries; this caller retries transient failures
// with exponential backoff before giving up until the next tick.
type DetectorWorker struct {
	detector *service.AnomalyService
	logger   *zap.Logger
	cfg      config.DetectorConfig
}

// NewDetectorWorker creates the worker.
func NewDetectorWorker(detector *service.AnomalyService, logger *zap.Logger, cfg config.DetectorConfig) *DetectorWorker {
	return &DetectorWorker{detector: detector, logger: logger, cfg: cfg}
}

// Run blocks until ctx is cancelled, sweeping once immediately and then
// on every interval tick.
func (w *DetectorWorker) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("anomaly detector worker disabled")
		return
	}

	w.sweep(ctx)

	ticker := time.NewTicker(w.cfg.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("anomaly detector worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *DetectorWorker) sweep(ctx context.Context) {
	operation := func() error {
		_, err := w.detector.DetectAnomalies(ctx)
		return err
	}

	retries := w.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		w.logger.Error("anomaly sweep failed after retries", zap.Error(err))
	}
}
