// Package watch decides which achievements the client should stop watching.
package watch

import (
	"fmt"
	"strings"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

// Policy reports whether the client should stop receiving incremental
// progress updates for rec. Implementations must be pure.
type Policy func(rec domain.Record, def domain.Definition) bool

// ShouldDeactivate is the policy the game client expects: it fires for
// records that are not finished whose definition asks to drop the watcher
// after finish. Rewarded records are not finished and therefore match.
func ShouldDeactivate(rec domain.Record, def domain.Definition) bool {
	return rec.Status != domain.StatusFinished && def.StopWatchingAfterFinish
}

// AfterFinish fires once the record has left the unfinished state. It is
// not wire compatible with current clients and is only used when selected
// explicitly.
func AfterFinish(rec domain.Record, def domain.Definition) bool {
	return rec.Status != domain.StatusUnfinished && rec.Status != domain.StatusInvalid && def.StopWatchingAfterFinish
}

// ByName resolves ACHIEVEMENT_WATCH_POLICY. Empty selects ShouldDeactivate.
func ByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "literal":
		return ShouldDeactivate, nil
	case "after_finish":
		return AfterFinish, nil
	}
	return nil, fmt.Errorf("unknown watch policy %q", name)
}
