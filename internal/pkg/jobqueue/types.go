package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeProcessNotification    JobType = "process_notification"
	JobTypeRegisterSubscription   JobType = "register_subscription"
	JobTypeDeregisterSubscription JobType = "deregister_subscription"
	JobTypeRefreshAccounts        JobType = "refresh_accounts"
)

// maxRetries per job type. Notifications are never retried so a flaky bot
// connection cannot produce duplicate posts.
var maxRetries = map[JobType]int{
	JobTypeProcessNotification:    0,
	JobTypeRegisterSubscription:   5,
	JobTypeDeregisterSubscription: 3,
	JobTypeRefreshAccounts:        1,
}

// MaxRetriesFor returns the retry budget of a job type.
func MaxRetriesFor(t JobType) int {
	if n, ok := maxRetries[t]; ok {
		return n
	}
	return DefaultMaxRetries
}

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// NotificationJobPayload is an EventSub notification as received by the
// webhook. Event is kept raw; decoding happens in the worker.
type NotificationJobPayload struct {
	MessageID        string          `json:"message_id"`
	SubscriptionType string          `json:"subscription_type"`
	Event            json.RawMessage `json:"event"`
}

// ToMap converts the payload to a map for storage
func (p NotificationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"message_id":        p.MessageID,
		"subscription_type": p.SubscriptionType,
		"event":             p.Event,
	}
}

func NotificationJobPayloadFromMap(data map[string]interface{}) (*NotificationJobPayload, error) {
	return fromMap[NotificationJobPayload](data)
}

// SubscriptionJobPayload names the event subscription to register or
// deregister. The record is reloaded when the job runs.
type SubscriptionJobPayload struct {
	SubscriptionUUID string `json:"subscription_uuid"`
}

func (p SubscriptionJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"subscription_uuid": p.SubscriptionUUID,
	}
}

func SubscriptionJobPayloadFromMap(data map[string]interface{}) (*SubscriptionJobPayload, error) {
	return fromMap[SubscriptionJobPayload](data)
}

// RefreshAccountsJobPayload records which schedule slot enqueued the refresh.
type RefreshAccountsJobPayload struct {
	Slot string `json:"slot,omitempty"`
}

func (p RefreshAccountsJobPayload) ToMap() map[string]interface{} {
	m := map[string]interface{}{}
	if p.Slot != "" {
		m["slot"] = p.Slot
	}
	return m
}

func fromMap[T any](data map[string]interface{}) (*T, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload T
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount <= j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
