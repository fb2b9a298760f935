// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ShareLinksIssued counts share link issuance outcomes. The "reused"
	// outcome is the idempotent path returning an existing active link.
	ShareLinksIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_share_links_issued_total",
		Help: "Total number of share link issuance operations by outcome",
	}, []string{"outcome"})

	// ShareTokenCollisions counts token uniqueness violations during
	// issuance. Any non-zero rate here deserves attention: collisions
	// indicate a degraded random source, not routine operation.
	ShareTokenCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_share_token_collisions_total",
		Help: "Total number of share token collisions during issuance",
	})

	// ShareLinksRedeemed counts redemption attempts by result.
	ShareLinksRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_share_links_redeemed_total",
		Help: "Total number of share link redemption attempts by result",
	}, []string{"result"})

	// AnalyticsEventsRecorded counts analytics events by type.
	AnalyticsEventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_analytics_events_recorded_total",
		Help: "Total number of analytics events persisted by event type",
	}, []string{"event_type"})

	// AnalyticsEventsDropped counts analytics events whose detached write
	// failed. A drop is not surfaced anywhere else.
	AnalyticsEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_analytics_events_dropped_total",
		Help: "Total number of analytics events lost to failed writes",
	})
)
