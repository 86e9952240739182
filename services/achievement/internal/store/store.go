package store

import (
	"context"
	"time"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

// Store is a player's achievement store as read by the notifier.
type Store interface {
	// ListAll returns every record of the player in insertion order.
	// A player without records yields an empty slice and no error.
	ListAll(ctx context.Context, playerID string) ([]domain.Record, error)
}

// Update is one progress event from the achievement-update subsystem.
type Update struct {
	AchievementID uint32
	Progress      uint32
	Finished      bool
	Rewarded      bool
	OccurredAt    time.Time
}

// Writer applies progress events. Progress never goes backwards and the
// first transition out of unfinished stamps FinishedAt exactly once.
type Writer interface {
	Apply(ctx context.Context, playerID string, u Update) (domain.Record, error)
}

// ReadWriter is implemented by both backends.
type ReadWriter interface {
	Store
	Writer
}

// apply folds u into rec. exists is false for a record not seen before.
func apply(rec domain.Record, exists bool, u Update) domain.Record {
	if !exists {
		rec = domain.Record{ID: u.AchievementID, Status: domain.StatusUnfinished}
	}
	switch rec.Status {
	case domain.StatusUnfinished:
		if u.Progress > rec.CurrentProgress {
			rec.CurrentProgress = u.Progress
		}
		if u.Finished {
			rec.Status = domain.StatusFinished
			at := u.finishedAt()
			rec.FinishedAt = &at
		}
	case domain.StatusFinished:
		if u.Rewarded {
			rec.Status = domain.StatusRewarded
		}
	}
	return rec
}

// finishedAt is the stamp used when u finishes a record. A missing event
// time falls back to now so a finished record never carries the zero time.
func (u Update) finishedAt() time.Time {
	if u.OccurredAt.IsZero() {
		return time.Now().UTC()
	}
	return u.OccurredAt.UTC()
}

func cloneRecord(r domain.Record) domain.Record {
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		r.FinishedAt = &t
	}
	return r
}
