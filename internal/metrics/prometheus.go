/*-------------------------------------------------------------------------
 *
 * prometheus.go
 *    Prometheus metrics for the approval engine
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/metrics/prometheus.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	/* Request metrics */
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysafari_approval_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sysafari_approval_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	/* Gate metrics */
	policyEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysafari_approval_policy_evaluations_total",
			Help: "Total number of policy evaluations",
		},
		[]string{"operation_code", "result"},
	)

	/* Decision metrics */
	approvalDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysafari_approval_decisions_total",
			Help: "Total number of approval decisions",
		},
		[]string{"operation_code", "decision"},
	)

	/* Execution metrics */
	executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysafari_approval_executions_total",
			Help: "Total number of deferred action executions",
		},
		[]string{"operation_code", "status"},
	)

	executionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sysafari_approval_execution_duration_seconds",
			Help:    "Deferred action execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation_code"},
	)

	/* Notification metrics */
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysafari_approval_notifications_total",
			Help: "Total number of notifications enqueued or delivered",
		},
		[]string{"kind", "status"},
	)
)

/* RecordHTTPRequest records an HTTP request */
func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

/* RecordPolicyEvaluation records a policy evaluation outcome */
func RecordPolicyEvaluation(operationCode, result string) {
	policyEvaluationsTotal.WithLabelValues(operationCode, result).Inc()
}

/* RecordDecision records an approve or reject decision */
func RecordDecision(operationCode, decision string) {
	approvalDecisionsTotal.WithLabelValues(operationCode, decision).Inc()
}

/* RecordExecution records a deferred action execution */
func RecordExecution(operationCode, status string, duration time.Duration) {
	executionsTotal.WithLabelValues(operationCode, status).Inc()
	executionDuration.WithLabelValues(operationCode).Observe(duration.Seconds())
}

/* RecordNotification records a notification event */
func RecordNotification(kind, status string) {
	notificationsTotal.WithLabelValues(kind, status).Inc()
}

/* Handler returns the Prometheus metrics HTTP handler */
func Handler() http.Handler {
	return promhttp.Handler()
}
