package background

import (
	"context"
	"log"
	"sync"
	"time"

	"worksite/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the background jobs of the service.
type JobScheduler struct {
	scheduler gocron.Scheduler
	autoLock  *jobs.RecordAutoLock
	interval  time.Duration
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler with the record auto-lock sweep
// registered at the given interval.
func NewJobScheduler(autoLock *jobs.RecordAutoLock, interval time.Duration) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		autoLock:  autoLock,
		interval:  interval,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	autoLockJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.autoLock.Run, context.Background()),
		gocron.WithName("record-auto-lock"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create record auto-lock job: %v", err)
	} else {
		js.jobs["record-auto-lock"] = autoLockJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}
