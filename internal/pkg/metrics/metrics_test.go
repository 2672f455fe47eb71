package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ResultOK},
		{name: "deadline", err: context.DeadlineExceeded, want: ResultTimeout},
		{name: "wrapped deadline", err: fmt.Errorf("ipc read: %w", context.DeadlineExceeded), want: ResultTimeout},
		{name: "other", err: errors.New("boom"), want: ResultError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Result(tc.err))
		})
	}
}

func TestPipelineMetrics_Counters(t *testing.T) {
	m := NewPipelineMetrics(prometheus.NewRegistry())

	m.ObserveWebhook("notification", ResultOK)
	m.ObserveWebhook("notification", ResultOK)
	m.ObserveNotification("stream.online", OutcomeDuplicate)
	m.ObserveDelivery("send_live_notification", nil)
	m.ObserveDelivery("send_live_notification", errors.New("refused"))
	m.ObserveJob("register_subscription", nil, 120*time.Millisecond)
	m.ObserveProviderCall("create subscription", context.DeadlineExceeded)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.webhooks.WithLabelValues("notification", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("stream.online", OutcomeDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("send_live_notification", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("send_live_notification", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("register_subscription", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues("create subscription", ResultTimeout)))
}

func TestPipelineMetrics_NilIsNoop(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.ObserveWebhook("notification", ResultOK)
		m.ObserveDelivery("send_raid_notification", nil)
		m.ObserveJob("refresh_accounts", nil, time.Second)
	})
}
