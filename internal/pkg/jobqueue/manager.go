package jobqueue

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/internal/pkg/env"
)

const (
	scheduleKeyPrefix = "schedule:"

	// A slot is still enqueued if the manager notices it this late.
	scheduleCatchUp = 10 * time.Minute
	scheduleMarkTTL = 6 * time.Hour
)

// RefreshHours are the local hours at which all accounts are refreshed.
var RefreshHours = []int{6, 18}

// Manager manages the job queue and the recurring account refresh
type Manager struct {
	queue          *Queue
	location       *time.Location
	scheduleTicker *time.Ticker
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton). Workers
// install their processors with SetProcessors before Start; processes that
// only enqueue never start it.
func GetManager() *Manager {
	managerOnce.Do(func() {
		queue := NewQueue(env.GetEnvInt("JOB_WORKERS", 5), Processors{})
		queue.SetJobTimeout(env.GetEnvDuration("JOB_TIMEOUT", DefaultJobTimeout))
		globalManager = NewManager(queue, loadLocation(env.GetEnv("TIMEZONE", "UTC")))
	})
	return globalManager
}

func NewManager(queue *Queue, location *time.Location) *Manager {
	if location == nil {
		location = time.UTC
	}
	return &Manager{
		queue:    queue,
		location: location,
		stopCh:   make(chan struct{}),
	}
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("[JobQueue Manager] Unknown TIMEZONE %q, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// SetProcessors installs the job handlers. It must be called before Start.
func (m *Manager) SetProcessors(p Processors) {
	m.queue.processors = p
}

// Start starts the job queue and the refresh schedule
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.scheduleTicker = time.NewTicker(time.Minute)
	m.wg.Add(1)
	go m.scheduleWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.scheduleTicker != nil {
		m.scheduleTicker.Stop()
	}

	close(m.stopCh)
	m.running = false
	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

func (m *Manager) scheduleWorker() {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Account refresh scheduled at %v (%s)", RefreshHours, m.location)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Schedule worker stopping")
			return
		case now := <-m.scheduleTicker.C:
			if _, err := m.enqueueDueRefresh(context.Background(), now); err != nil {
				log.Errorf("[JobQueue Manager] Scheduling account refresh failed: %v", err)
			}
		}
	}
}

// enqueueDueRefresh enqueues refresh_accounts when a slot started within the
// catch-up window. A Redis SET NX marker per slot makes sure only one
// process enqueues it.
func (m *Manager) enqueueDueRefresh(ctx context.Context, now time.Time) (bool, error) {
	slot := lastSlot(now, RefreshHours, m.location)
	if now.Sub(slot) > scheduleCatchUp {
		return false, nil
	}

	slotID := slot.Format(time.RFC3339)
	key := scheduleKeyPrefix + string(JobTypeRefreshAccounts) + ":" + slotID
	claimed, err := m.queue.client.SetNX(ctx, key, now.UTC().Format(time.RFC3339), scheduleMarkTTL).Result()
	if err != nil || !claimed {
		return false, err
	}

	if _, err := m.queue.EnqueueJob(ctx, JobTypeRefreshAccounts, RefreshAccountsJobPayload{Slot: slotID}.ToMap()); err != nil {
		_ = m.queue.client.Del(ctx, key).Err()
		return false, err
	}
	log.Infof("[JobQueue Manager] Enqueued account refresh for %s", slotID)
	return true, nil
}

// lastSlot returns the latest time at or before now whose local hour is in
// hours and whose minute is zero.
func lastSlot(now time.Time, hours []int, loc *time.Location) time.Time {
	local := now.In(loc)
	var best time.Time
	for dayOffset := 0; dayOffset <= 1; dayOffset++ {
		day := local.AddDate(0, 0, -dayOffset)
		for _, h := range hours {
			slot := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, loc)
			if !slot.After(local) && slot.After(best) {
				best = slot
			}
		}
		if !best.IsZero() {
			return best
		}
	}
	return best
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
