package jobs

import (
	"context"

	"meterbill-dashboard/internal/logger"
)

// UpdateOverdueBills asks the backend to reclassify past-due PENDING
// bills as OVERDUE. The operation is idempotent server-side, so a rerun
// after a missed schedule simply reports zero updates.
func (jr *JobRunner) UpdateOverdueBills() {
	jr.runWithRecovery("UpdateOverdueBills", func() {
		ctx := context.Background()

		updated, err := jr.billing.UpdateOverdue(ctx)
		if err != nil {
			logger.Error("Failed to update overdue bills", "error", err)
			return
		}

		logger.Info("Overdue bills reclassified", "updated_count", updated)
	})
}
