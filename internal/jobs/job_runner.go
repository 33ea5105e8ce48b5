package jobs

import (
	"meterbill-dashboard/internal/config"
	"meterbill-dashboard/internal/logger"
	"meterbill-dashboard/internal/service"
)

// JobRunner coordinates the scheduled maintenance jobs run against the
// backend under an admin session.
type JobRunner struct {
	billing service.BillingService
	config  *config.Config
}

// NewJobRunner creates a job runner with its dependencies.
func NewJobRunner(billing service.BillingService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		billing: billing,
		config:  cfg,
	}
}

// Config returns the loaded configuration for schedule wiring.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
