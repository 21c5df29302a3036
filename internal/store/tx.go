package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thicketlabs/thicket/internal/db"
)

// maxTxRetries bounds internal reruns of a mutation that lost a
// serialization race before ErrConcurrentUpdateConflict is surfaced.
const maxTxRetries = 3

// runInTx executes fn inside a transaction, rerunning it from scratch on
// retryable conflicts. Derived-state writes share the transaction with the
// triggering ledger write, so a failure anywhere rolls back everything.
func runInTx(ctx context.Context, database *db.DB, logger *zap.Logger, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := database.DB.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		logger.Debug("Retrying conflicting transaction",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return fmt.Errorf("%w: %v", ErrConcurrentUpdateConflict, lastErr)
}

// nowUTC is the store clock; tests may fix it per maintainer instead.
func nowUTC() time.Time {
	return time.Now().UTC()
}
