// Package worker implements the periodic snapshot refresh loop. It
// recomputes every active question's probability distribution and persists
// the result as a new snapshot batch, decoupling expensive bracket
// propagation from request handling.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worldscrystal/prediction-api/internal/logic"
)

// Prometheus metrics
var (
	refreshRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_refresh_runs_total",
		Help: "Total number of snapshot refresh runs",
	})

	questionsRefreshed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_questions_refreshed_total",
		Help: "Total number of question distributions recomputed",
	})

	questionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_questions_failed_total",
		Help: "Total number of question refreshes that failed",
	})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_refresh_duration_seconds",
		Help:    "Duration of full refresh runs",
		Buckets: prometheus.DefBuckets,
	})
)

// RefresherConfig configures the refresh loop
type RefresherConfig struct {
	Interval  time.Duration
	Workers   int
	Picks     logic.PickService
	Snapshots logic.SnapshotService
	Logger    *zap.Logger
}

// Refresher periodically recomputes all active questions' distributions
type Refresher struct {
	config RefresherConfig
	logger *zap.SugaredLogger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefresher creates a refresher; Start launches the loop
func NewRefresher(cfg RefresherConfig) *Refresher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Refresher{
		config: cfg,
		logger: cfg.Logger.Sugar(),
	}
}

// Start runs the refresh loop until Stop is called or ctx is cancelled.
// The first run fires immediately so a fresh deploy publishes snapshots
// without waiting a full interval.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.config.Interval)
		defer ticker.Stop()

		r.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for any in-flight run to finish
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Refresher) runOnce(ctx context.Context) {
	if err := r.RefreshAll(ctx); err != nil && ctx.Err() == nil {
		r.logger.Errorw("Snapshot refresh run failed", "error", err)
	}
}

// RefreshAll recomputes and persists every active question's distribution.
// Questions are refreshed concurrently up to the worker limit; one failing
// question does not abort the rest, it is logged and counted.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	runID := uuid.NewString()
	start := time.Now()
	refreshRuns.Inc()

	ids, err := r.config.Picks.ActiveQuestionIDs(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	for _, questionID := range ids {
		questionID := questionID
		g.Go(func() error {
			if err := r.refreshQuestion(ctx, questionID); err != nil {
				questionsFailed.Inc()
				r.logger.Errorw("Failed to refresh question",
					"run_id", runID, "question_id", questionID, "error", err)
				return nil
			}
			questionsRefreshed.Inc()
			return nil
		})
	}

	err = g.Wait()
	refreshDuration.Observe(time.Since(start).Seconds())
	r.logger.Infow("Snapshot refresh run complete",
		"run_id", runID, "questions", len(ids), "duration", time.Since(start))
	return err
}

func (r *Refresher) refreshQuestion(ctx context.Context, questionID int64) error {
	entries, err := r.config.Picks.CalculatePickProbabilities(ctx, questionID)
	if err != nil {
		return err
	}
	return r.config.Snapshots.SaveSnapshots(ctx, questionID, entries)
}
