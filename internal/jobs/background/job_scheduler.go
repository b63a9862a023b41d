package background

import (
	"context"
	"log"
	"sync"
	"time"

	"rentalbill/internal/analytics"
	"rentalbill/internal/models"
	"rentalbill/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// stalePendingAge is how long a history entry may sit in pending before the
// scan job reports it.
const stalePendingAge = 30 * 24 * time.Hour

// JobScheduler runs the periodic maintenance jobs: summary cache refresh and
// the stale-pending scan.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	analyticsSvc analytics.Service
	historyRepo  repositories.HistoryRepository
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

func NewJobScheduler(analyticsSvc analytics.Service, historyRepo repositories.HistoryRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		analyticsSvc: analyticsSvc,
		historyRepo:  historyRepo,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	summaryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.refreshSummary, context.Background()),
		gocron.WithName("summary-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create summary refresh job: %v", err)
	} else {
		js.registerJob("summary-refresh", summaryJob)
	}

	staleJob, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.scanStalePending, context.Background()),
		gocron.WithName("stale-pending-scan"),
	)
	if err != nil {
		log.Printf("Failed to create stale-pending scan job: %v", err)
	} else {
		js.registerJob("stale-pending-scan", staleJob)
	}

	js.mu.RLock()
	count := len(js.jobs)
	js.mu.RUnlock()
	log.Printf("Registered %d background jobs", count)
}

func (js *JobScheduler) registerJob(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[name] = job
}

// refreshSummary keeps the cached unrestricted monthly summary warm so the
// dashboard never pays the aggregate query on a cold cache.
func (js *JobScheduler) refreshSummary(ctx context.Context) error {
	if err := js.analyticsSvc.RefreshGlobalSummary(ctx); err != nil {
		log.Printf("Summary refresh failed: %v", err)
		return err
	}
	return nil
}

// scanStalePending counts pending entries older than stalePendingAge and
// logs the figure for the operators. Entries are never mutated.
func (js *JobScheduler) scanStalePending(ctx context.Context) error {
	cutoff := time.Now().Add(-stalePendingAge)
	count, err := js.historyRepo.CountByStatusBefore(ctx, models.HistoryStatusPending, cutoff)
	if err != nil {
		log.Printf("Stale-pending scan failed: %v", err)
		return err
	}
	if count > 0 {
		log.Printf("Stale-pending scan: %d entries pending since before %s", count, cutoff.Format("2006-01-02"))
	}
	return nil
}
