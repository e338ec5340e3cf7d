package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/polkiloo/foodorder/internal/adapter/whatsapp"
	"github.com/polkiloo/foodorder/internal/domain/model"
)

// RedeliveryFacade exposes the subset of application functionality required by the worker.
type RedeliveryFacade interface {
	FailedNotifications(ctx context.Context, limit int) ([]model.NotificationRecord, error)
	RedeliverNotification(ctx context.Context, record model.NotificationRecord) error
}

// Redeliverer polls failed notifications and retries them concurrently.
type Redeliverer struct {
	facade       RedeliveryFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs     chan model.NotificationRecord
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewRedeliverer constructs the redelivery worker pool.
func NewRedeliverer(facade RedeliveryFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *Redeliverer {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Redeliverer{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.NotificationRecord, batchSize*workers),
		inFlight:     make(map[int64]struct{}),
	}
}

// Start launches background processing.
func (r *Redeliverer) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *Redeliverer) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Redeliverer) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Redeliverer) fetchAndDispatch(ctx context.Context) {
	records, err := r.facade.FailedNotifications(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("fetch failed notifications", slog.String("error", err.Error()))
		return
	}
	for _, rec := range records {
		if !r.claim(rec.ID) {
			continue
		}
		select {
		case <-ctx.Done():
			r.release(rec.ID)
			return
		case r.jobs <- rec:
		}
	}
}

// claim marks a record as queued so a slow retry is not picked up twice.
func (r *Redeliverer) claim(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[id]; busy {
		return false
	}
	r.inFlight[id] = struct{}{}
	return true
}

func (r *Redeliverer) release(id int64) {
	r.mu.Lock()
	delete(r.inFlight, id)
	r.mu.Unlock()
}

func (r *Redeliverer) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handle(ctx, rec)
			r.release(rec.ID)
		}
	}
}

func (r *Redeliverer) handle(ctx context.Context, rec model.NotificationRecord) {
	err := r.facade.RedeliverNotification(ctx, rec)
	if err == nil {
		r.logger.Info("notification redelivered", slog.Int64("record_id", rec.ID), slog.Int("attempt", rec.Attempt+1))
		return
	}

	var perr *whatsapp.ProviderError
	if errors.As(err, &perr) && perr.StatusCode == http.StatusTooManyRequests {
		r.logger.Warn("provider rate limited", slog.Duration("backoff", r.pollInterval))
		select {
		case <-ctx.Done():
		case <-time.After(r.pollInterval):
		}
		return
	}
	r.logger.Error("notification redelivery failed", slog.Int64("record_id", rec.ID), slog.String("error", err.Error()))
}
