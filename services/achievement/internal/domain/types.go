// Package domain holds the achievement types shared by the store, catalog
// and notifier.
package domain

import (
	"fmt"
	"time"
)

// Status is the achievement state. Values are the wire ordinals.
type Status int32

const (
	StatusInvalid    Status = 0
	StatusUnfinished Status = 1
	StatusFinished   Status = 2
	StatusRewarded   Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusUnfinished:
		return "unfinished"
	case StatusFinished:
		return "finished"
	case StatusRewarded:
		return "rewarded"
	default:
		return fmt.Sprintf("invalid(%d)", int32(s))
	}
}

// ParseStatus is the inverse of String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "unfinished":
		return StatusUnfinished, nil
	case "finished":
		return StatusFinished, nil
	case "rewarded":
		return StatusRewarded, nil
	}
	return StatusInvalid, fmt.Errorf("unknown achievement status %q", s)
}

// Record is one achievement's progress as owned by a player's store.
// FinishedAt is non-nil iff Status != StatusUnfinished.
type Record struct {
	ID              uint32
	Status          Status
	CurrentProgress uint32
	FinishedAt      *time.Time
}

// Definition is the designer-authored template of an achievement.
type Definition struct {
	ID                      uint32 `json:"id"`
	TotalProgress           uint32 `json:"total_progress"`
	StopWatchingAfterFinish bool   `json:"stop_watching_after_finish"`
}

// SnapshotEntry is the value copy of a record sent in a snapshot.
type SnapshotEntry struct {
	ID              uint32
	Status          Status
	CurrentProgress uint32
	TotalProgress   uint32
	FinishedAt      *time.Time
}

// NewSnapshotEntry joins rec with def. Progress is copied verbatim.
func NewSnapshotEntry(rec Record, def Definition) SnapshotEntry {
	e := SnapshotEntry{
		ID:              rec.ID,
		Status:          rec.Status,
		CurrentProgress: rec.CurrentProgress,
		TotalProgress:   def.TotalProgress,
	}
	if rec.FinishedAt != nil {
		t := *rec.FinishedAt
		e.FinishedAt = &t
	}
	return e
}
