// Package activity writes audit entries off the request path.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/goroutine"
	"github.com/orris-inc/warden/internal/shared/logger"
)

const writeTimeout = 5 * time.Second

type failureCounter interface {
	ActivityWriteFailed()
}

// Recorder appends activity entries in the background. A failed write is
// logged and counted; it never reaches the caller.
type Recorder struct {
	repo    activity.Repository
	metrics failureCounter
	logger  logger.Interface
	// async is false in tests so writes complete before Record returns.
	async bool

	pending sync.WaitGroup
}

func NewRecorder(repo activity.Repository, metrics failureCounter, logger logger.Interface) *Recorder {
	return &Recorder{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		async:   true,
	}
}

func NewSyncRecorder(repo activity.Repository, logger logger.Interface) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Record(actor *authorization.Principal, action, subjectType string, subjectID uint, properties map[string]any) {
	entry := &activity.Entry{
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Properties:  properties,
		CreatedAt:   biztime.NowUTC(),
	}
	if actor != nil {
		entry.TenantID = actor.TenantID
		entry.ActorID = actor.UserID
	}

	if !r.async {
		r.write(entry)
		return
	}
	r.pending.Add(1)
	goroutine.SafeGo(r.logger, "activity.record", func() {
		defer r.pending.Done()
		r.write(entry)
	})
}

// Wait blocks until every background write has finished or ctx is done.
func (r *Recorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) write(entry *activity.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Errorw("failed to record activity",
			"action", entry.Action,
			"subject_type", entry.SubjectType,
			"subject_id", entry.SubjectID,
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.ActivityWriteFailed()
		}
	}
}
