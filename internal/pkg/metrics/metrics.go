package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultTimeout = "timeout"

	// Webhook requests that failed validation.
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
)

// Notification outcomes.
const (
	OutcomeDispatched  = "dispatched"
	OutcomeDuplicate   = "duplicate"
	OutcomeNoOwner     = "no_owner"
	OutcomeUnscoped    = "unscoped"
	OutcomeUnsupported = "unsupported"
)

// PipelineMetrics holds the collectors for webhook intake, fanout, the job
// queue and provider calls.
type PipelineMetrics struct {
	webhooks      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	jobs          *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	providerCalls *prometheus.CounterVec
}

var (
	pipelineOnce    sync.Once
	pipelineMetrics *PipelineMetrics
)

// Pipeline returns the process-wide metrics registered on the default registerer.
func Pipeline() *PipelineMetrics {
	pipelineOnce.Do(func() {
		pipelineMetrics = NewPipelineMetrics(prometheus.DefaultRegisterer)
	})
	return pipelineMetrics
}

func NewPipelineMetrics(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &PipelineMetrics{
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttv_eventsub_webhooks_total",
			Help: "EventSub callbacks received by message type and result.",
		}, []string{"message_type", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttv_notifications_total",
			Help: "Processed notification events by kind and outcome.",
		}, []string{"kind", "outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttv_ipc_deliveries_total",
			Help: "Notification deliveries to the bot by route and result.",
		}, []string{"route", "result"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttv_jobs_total",
			Help: "Job executions by type and result.",
		}, []string{"type", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ttv_job_duration_seconds",
			Help:    "Job execution latency by type.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"type"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttv_twitch_api_calls_total",
			Help: "Twitch API calls by operation and result.",
		}, []string{"op", "result"}),
	}

	registerer.MustRegister(
		m.webhooks,
		m.notifications,
		m.deliveries,
		m.jobs,
		m.jobDuration,
		m.providerCalls,
	)
	return m
}

// Result maps an error to a low-cardinality result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, context.DeadlineExceeded):
		return ResultTimeout
	default:
		return ResultError
	}
}

func (m *PipelineMetrics) ObserveWebhook(messageType, result string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(messageType, result).Inc()
}

func (m *PipelineMetrics) ObserveNotification(kind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

func (m *PipelineMetrics) ObserveDelivery(route string, err error) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(route, Result(err)).Inc()
}

func (m *PipelineMetrics) ObserveJob(jobType string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(jobType, Result(err)).Inc()
	m.jobDuration.WithLabelValues(jobType).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) ObserveProviderCall(op string, err error) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(op, Result(err)).Inc()
}
