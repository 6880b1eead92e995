package scheduler

import (
	"context"
	"time"

	"github.com/orris-inc/warden/internal/shared/biztime"
)

type staleSessionDeleter interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionPruneJob deletes sessions that have been expired or revoked for
// longer than retention.
type SessionPruneJob struct {
	sessions  staleSessionDeleter
	retention time.Duration
}

func NewSessionPruneJob(sessions staleSessionDeleter, retention time.Duration) *SessionPruneJob {
	return &SessionPruneJob{sessions: sessions, retention: retention}
}

func (j *SessionPruneJob) Execute(ctx context.Context) (int, error) {
	n, err := j.sessions.DeleteStale(ctx, biztime.NowUTC().Add(-j.retention))
	return int(n), err
}
