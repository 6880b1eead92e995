// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/goroutine"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// BatchJob processes one batch and returns how many items it touched.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

type BatchJobFunc func(ctx context.Context) (int, error)

func (f BatchJobFunc) Execute(ctx context.Context) (int, error) { return f(ctx) }

type Manager struct {
	cron   *cron.Cron
	logger logger.Interface

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewManager(log logger.Interface) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cron: cron.New(
			cron.WithLocation(biztime.Location()),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules job under a standard five-field cron spec or a
// descriptor such as "@every 1h".
func (m *Manager) Register(name, spec string, timeout time.Duration, job BatchJob) error {
	_, err := m.cron.AddFunc(spec, func() {
		m.run(name, timeout, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	m.logger.Infow("scheduled job registered", "job", name, "spec", spec)
	return nil
}

func (m *Manager) run(name string, timeout time.Duration, job BatchJob) {
	defer goroutine.Recover(m.logger, name)

	ctx, cancel := context.WithTimeout(m.ctx, timeout)
	defer cancel()

	start := biztime.NowUTC()
	n, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("scheduled job failed", "job", name, "error", err)
		return
	}
	if n > 0 {
		m.logger.Infow("scheduled job finished", "job", name, "processed", n, "elapsed", time.Since(start))
	}
}

func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}
	m.started = false
	m.cancel()
	<-m.cron.Stop().Done()
}

func (m *Manager) Entries() int {
	return len(m.cron.Entries())
}
