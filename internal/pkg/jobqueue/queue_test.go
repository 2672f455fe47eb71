package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Natsku123/ttv-tools/internal/pkg/accountsync"
	"github.com/Natsku123/ttv-tools/internal/pkg/cache/cachetest"
	"github.com/Natsku123/ttv-tools/internal/pkg/eventsub"
	"github.com/Natsku123/ttv-tools/internal/pkg/metrics"
	"github.com/Natsku123/ttv-tools/internal/pkg/notify"
)

const jobqueueTestRedisDB = 13

type fakeNotifications struct {
	mu    sync.Mutex
	calls []NotificationJobPayload
	err   error
}

func (f *fakeNotifications) Process(_ context.Context, messageID, subscriptionType string, raw json.RawMessage) (notify.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, NotificationJobPayload{MessageID: messageID, SubscriptionType: subscriptionType, Event: raw})
	return notify.Report{MessageID: messageID, Kind: eventsub.Kind(subscriptionType), Outcome: metrics.OutcomeDispatched}, f.err
}

type fakeSubscriptions struct {
	mu           sync.Mutex
	registered   []string
	deregistered []string
	err          error
}

func (f *fakeSubscriptions) Register(_ context.Context, uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, uuid)
	return f.err
}

func (f *fakeSubscriptions) Deregister(_ context.Context, uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deregistered = append(f.deregistered, uuid)
	return f.err
}

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) RefreshAll(context.Context) (accountsync.Result, error) {
	f.calls++
	return accountsync.Result{Accounts: 2, Fetched: 2, Updated: 2}, nil
}

func newTestQueue(t *testing.T, processors Processors) (*Queue, *redis.Client) {
	t.Helper()
	client := cachetest.NewIsolatedClient(t, jobqueueTestRedisDB)
	q := NewQueueWithClient(client, 2, processors)
	q.retryBackoff = 10 * time.Millisecond
	return q, client
}

// runNext dequeues and processes exactly one job.
func runNext(t *testing.T, q *Queue) *Job {
	t.Helper()
	job, err := q.dequeueJob(context.Background())
	require.NoError(t, err)
	q.processJob(context.Background(), job)
	return job
}

func TestNewQueueWithClient(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{"Valid worker count", 5, 5},
		{"Zero workers", 0, 3},
		{"Negative workers", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := NewQueueWithClient(nil, tt.workers, Processors{})

			assert.NotNil(t, queue)
			assert.Equal(t, tt.expectedWorkers, queue.workers)
			assert.Equal(t, tt.expectedWorkers, cap(queue.workerPool))
			assert.Equal(t, DefaultJobTimeout, queue.jobTimeout)
			assert.False(t, queue.running)
		})
	}
}

func TestSetJobTimeout(t *testing.T) {
	q := NewQueueWithClient(nil, 1, Processors{})
	q.SetJobTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, q.jobTimeout)

	q.SetJobTimeout(0)
	assert.Equal(t, 5*time.Second, q.jobTimeout)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "job:", JobKeyPrefix)
	assert.Equal(t, "job_queue", JobQueueKey)
	assert.Equal(t, "job_processing", JobProcessingKey)
	assert.Equal(t, "job_stats", JobStatsKey)
	assert.Equal(t, 24*time.Hour, JobTTL)
}

func TestEnqueueJob_StoresPendingJob(t *testing.T) {
	q, client := newTestQueue(t, Processors{})
	ctx := context.Background()

	job, err := EnqueueRegistration(ctx, q, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, JobTypeRegisterSubscription, job.Type)
	assert.Equal(t, 5, job.MaxRetries)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)
	assert.Equal(t, "sub-1", stored.Payload["subscription_uuid"])

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, size)

	ttl, err := client.TTL(ctx, JobKeyPrefix+job.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 23*time.Hour)

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats[JobStatusPending])
}

func TestProcessJob_NotificationRoundTrip(t *testing.T) {
	notifications := &fakeNotifications{}
	q, _ := newTestQueue(t, Processors{Notifications: notifications})
	ctx := context.Background()

	event := json.RawMessage(`{"broadcaster_user_id":"1337","viewers":12}`)
	job, err := EnqueueNotification(ctx, q, "msg-1", "channel.raid", event)
	require.NoError(t, err)

	runNext(t, q)

	require.Len(t, notifications.calls, 1)
	call := notifications.calls[0]
	assert.Equal(t, "msg-1", call.MessageID)
	assert.Equal(t, "channel.raid", call.SubscriptionType)
	assert.JSONEq(t, string(event), string(call.Event))

	// Completed jobs are removed.
	_, err = q.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, redis.Nil)

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats[JobStatusCompleted])
}

func TestProcessJob_FailedNotificationIsNotRetried(t *testing.T) {
	notifications := &fakeNotifications{err: errors.New("dedup unavailable")}
	q, _ := newTestQueue(t, Processors{Notifications: notifications})
	ctx := context.Background()

	job, err := EnqueueNotification(ctx, q, "msg-2", "channel.follow", json.RawMessage(`{}`))
	require.NoError(t, err)

	runNext(t, q)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)
	assert.Equal(t, "dedup unavailable", stored.ErrorMsg)

	time.Sleep(50 * time.Millisecond)
	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestProcessJob_FailedRegistrationIsRequeued(t *testing.T) {
	subs := &fakeSubscriptions{err: errors.New("twitch create_subscription failed: status=500 body=")}
	q, _ := newTestQueue(t, Processors{Subscriptions: subs})
	ctx := context.Background()

	job, err := EnqueueRegistration(ctx, q, "sub-2")
	require.NoError(t, err)

	runNext(t, q)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRetrying, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)

	delayed, err := q.GetDelayedSize(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, delayed)

	// Not due yet.
	assert.Zero(t, q.promoteDue(ctx, time.Now().Add(-time.Second)))
	assert.Equal(t, 1, q.promoteDue(ctx, time.Now().Add(time.Second)))

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, size)

	subs.err = nil
	runNext(t, q)
	assert.Equal(t, []string{"sub-2", "sub-2"}, subs.registered)

	_, err = q.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestProcessJob_RetrySurvivesWorkerRestart(t *testing.T) {
	subs := &fakeSubscriptions{err: errors.New("twitch create_subscription failed: status=500 body=")}
	q, client := newTestQueue(t, Processors{Subscriptions: subs})
	ctx := context.Background()

	job, err := EnqueueRegistration(ctx, q, "sub-restart")
	require.NoError(t, err)
	runNext(t, q)

	// A new process on the same Redis picks the retry up once it is due.
	restartedSubs := &fakeSubscriptions{}
	restarted := NewQueueWithClient(client, 1, Processors{Subscriptions: restartedSubs})
	restarted.sweepStuck(ctx, 10*time.Minute, time.Now().Add(2*time.Hour))
	assert.Equal(t, 1, restarted.promoteDue(ctx, time.Now().Add(2*time.Hour)))

	runNext(t, restarted)
	assert.Equal(t, []string{"sub-restart"}, restartedSubs.registered)

	_, err = restarted.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, redis.Nil)
	delayed, err := restarted.GetDelayedSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, delayed)
}

func TestProcessJob_DispatchesByType(t *testing.T) {
	subs := &fakeSubscriptions{}
	refresher := &fakeRefresher{}
	q, _ := newTestQueue(t, Processors{Subscriptions: subs, Accounts: refresher})
	ctx := context.Background()

	_, err := EnqueueDeregistration(ctx, q, "sub-3")
	require.NoError(t, err)
	_, err = q.EnqueueJob(ctx, JobTypeRefreshAccounts, RefreshAccountsJobPayload{}.ToMap())
	require.NoError(t, err)

	runNext(t, q)
	runNext(t, q)

	assert.Equal(t, []string{"sub-3"}, subs.deregistered)
	assert.Empty(t, subs.registered)
	assert.Equal(t, 1, refresher.calls)
}

func TestProcessJob_MissingProcessorFails(t *testing.T) {
	q, _ := newTestQueue(t, Processors{})
	err := q.runJob(context.Background(), &Job{Type: JobTypeRefreshAccounts})
	assert.ErrorIs(t, err, errNoProcessor)

	err = q.runJob(context.Background(), &Job{Type: "unknown"})
	assert.Error(t, err)
}

func TestProcessJob_SubscriptionPayloadRequiresUUID(t *testing.T) {
	q := NewQueueWithClient(nil, 1, Processors{Subscriptions: &fakeSubscriptions{}})
	err := q.runJob(context.Background(), &Job{Type: JobTypeRegisterSubscription, Payload: map[string]interface{}{}})
	assert.Error(t, err)
}

func TestWorkers_ProcessEnqueuedJobs(t *testing.T) {
	subs := &fakeSubscriptions{}
	q, _ := newTestQueue(t, Processors{Subscriptions: subs})
	ctx := context.Background()

	q.Start()
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		_, err := EnqueueRegistration(ctx, q, id)
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		subs.mu.Lock()
		defer subs.mu.Unlock()
		return len(subs.registered) == 3
	}, 5*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, subs.registered)
}

func TestSweepStuck(t *testing.T) {
	q, client := newTestQueue(t, Processors{})
	ctx := context.Background()
	now := time.Now()
	old := now.Add(-time.Hour)

	stuck := func(jobType JobType) *Job {
		job := &Job{
			ID:          "stuck-" + string(jobType),
			Type:        jobType,
			Status:      JobStatusProcessing,
			Payload:     map[string]interface{}{},
			CreatedAt:   old,
			UpdatedAt:   old,
			ProcessedAt: &old,
			MaxRetries:  MaxRetriesFor(jobType),
		}
		q.updateJob(ctx, job)
		require.NoError(t, client.LPush(ctx, JobProcessingKey, job.ID).Err())
		return job
	}

	registration := stuck(JobTypeRegisterSubscription)
	notification := stuck(JobTypeProcessNotification)

	q.sweepStuck(ctx, 10*time.Minute, now)

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)

	pending, err := client.LRange(ctx, JobQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{registration.ID}, pending)

	dropped, err := q.GetJob(ctx, notification.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, dropped.Status)
}
