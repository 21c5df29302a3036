package rescorer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
	"github.com/thicketlabs/thicket/internal/store"
	"github.com/thicketlabs/thicket/pkg/config"
	"github.com/thicketlabs/thicket/pkg/logging"
)

// Rescorer periodically recomputes hot scores for recent posts so the age
// decay reorders listings even when no new votes arrive. Posts older than
// the rescore window have decayed out of hot listings and are left alone.
type Rescorer struct {
	config     *config.Config
	db         *db.DB
	aggregates *store.AggregateMaintainer
	logger     *zap.Logger
}

// New creates a new rescorer
func New(cfg *config.Config, database *db.DB) *Rescorer {
	logger := logging.GetLogger().With(zap.String("component", "rescorer"))
	return &Rescorer{
		config:     cfg,
		db:         database,
		aggregates: store.NewAggregateMaintainer(database, logger),
		logger:     logger,
	}
}

// Run starts the rescore loop and blocks until ctx is cancelled.
func (r *Rescorer) Run(ctx context.Context) error {
	interval := r.config.Rescorer.IntervalSeconds
	if interval <= 0 {
		interval = 300
	}

	r.logger.Info("Starting rescorer",
		zap.Int("interval_seconds", interval),
		zap.Int("window_days", r.config.Rescorer.WindowDays))

	for {
		if err := r.rescorePass(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("Rescore pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(interval) * time.Second):
		}
	}
}

// rescorePass walks all posts inside the window in ID batches.
func (r *Rescorer) rescorePass(ctx context.Context) error {
	windowDays := r.config.Rescorer.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	batchSize := r.config.Rescorer.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	start := time.Now()
	total := 0
	lastID := int64(0)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var ids []int64
		err := r.db.DB.WithContext(ctx).
			Model(&models.Post{}).
			Where("id > ? AND created_at > ? AND is_deleted = false", lastID, cutoff).
			Order("id").
			Limit(batchSize).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}

		if err := r.aggregates.RecomputeHotScores(ctx, ids); err != nil {
			return err
		}

		total += len(ids)
		lastID = ids[len(ids)-1]

		r.logger.Debug("Rescored batch",
			zap.Int("batch", len(ids)),
			zap.Int64("last_id", lastID))
	}

	r.logger.Info("Rescore pass complete",
		zap.Int("posts", total),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}
