package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"staybook/pkg/logger"
)

// JobProcessor runs background booking maintenance on a gocron scheduler.
type JobProcessor struct {
	service   Service
	config    *JobConfig
	scheduler gocron.Scheduler
	log       *logger.Logger
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	CompletionInterval time.Duration
	BatchSize          int
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		CompletionInterval: 15 * time.Minute,
		BatchSize:          100,
	}
}

func NewJobProcessor(service Service, scheduler gocron.Scheduler, config *JobConfig, log *logger.Logger) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &JobProcessor{
		service:   service,
		config:    config,
		scheduler: scheduler,
		log:       log,
	}
}

// Start registers the jobs; the scheduler itself is started by the caller.
func (jp *JobProcessor) Start(ctx context.Context) error {
	job, err := jp.scheduler.NewJob(
		gocron.DurationJob(jp.config.CompletionInterval),
		gocron.NewTask(jp.completeFinishedStays, ctx),
		gocron.WithName("complete-finished-stays"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule completion job: %w", err)
	}

	jp.log.Info("Booking background jobs registered",
		"job_id", job.ID().String(),
		"interval", jp.config.CompletionInterval.String(),
	)
	return nil
}

// completeFinishedStays moves confirmed bookings whose check-out has passed
// to completed.
func (jp *JobProcessor) completeFinishedStays(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	completed, err := jp.service.CompleteFinishedStays(ctx, jp.config.BatchSize)
	if err != nil {
		jp.log.ErrorWithContext(ctx, "Completion Sweep Failed", err, map[string]interface{}{
			"completed": completed,
		})
		return
	}

	if completed > 0 {
		jp.log.InfoWithContext(ctx, "Completion Sweep Finished", map[string]interface{}{
			"completed": completed,
		})
	}
}
