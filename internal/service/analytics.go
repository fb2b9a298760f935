package service

import (
	"context"
	"sync"
	"time"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
)

const analyticsWriteTimeout = 5 * time.Second

// RequestMeta carries the request attributes worth keeping on an analytics
// event. Handlers fill it from the incoming request; everything in it is
// optional.
type RequestMeta struct {
	UserAgent   string
	IP          string
	DeviceClass string
}

// AnalyticsRecorder persists analytics events off the request path. Record
// returns before the write happens and a failed write is logged and
// counted, never surfaced: losing an event must not fail the request that
// produced it.
type AnalyticsRecorder struct {
	repo    repository.AnalyticsRepository
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAnalyticsRecorder(repo repository.AnalyticsRepository) *AnalyticsRecorder {
	return &AnalyticsRecorder{repo: repo, timeout: analyticsWriteTimeout}
}

// Record schedules an analytics event write. The write runs on its own
// goroutine with a detached context so it survives the request finishing,
// but still carries the request's logging values and gets its own deadline.
// The request context's values are snapshotted, not referenced: Fiber
// recycles the request context once the handler returns, so the goroutine
// must never read through it.
func (r *AnalyticsRecorder) Record(ctx context.Context, event *models.AnalyticsEvent, meta RequestMeta) {
	event.UserAgent = meta.UserAgent
	event.IP = meta.IP
	event.DeviceClass = meta.DeviceClass

	detached := middleware.DetachContext(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		writeCtx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()
		span, writeCtx := observability.NewSpan(writeCtx, "analytics.record")
		defer span.End()
		if err := r.repo.Create(writeCtx, event); err != nil {
			span.SetError(err)
			observability.AnalyticsEventsDropped.Inc()
			middleware.Logger.ErrorContext(writeCtx, "analytics event dropped",
				"event_type", string(event.EventType),
				"portfolio_id", event.PortfolioID,
				"error", err)
			return
		}
		observability.AnalyticsEventsRecorded.WithLabelValues(string(event.EventType)).Inc()
	}()
}

// Wait blocks until all in-flight writes finish. Called on shutdown so a
// drain does not abandon events already accepted.
func (r *AnalyticsRecorder) Wait() {
	r.wg.Wait()
}
