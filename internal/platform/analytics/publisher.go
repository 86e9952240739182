// Package analytics provides a fire-and-forget NATS publisher for analytics events.
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject constants for every analytics event type.
const (
	SubjectAchievementSynced   = "analytics.achievement.synced"
	SubjectAchievementProgress = "analytics.achievement.progress"

	// StreamSubjects is bound to the ANALYTICS stream.
	StreamSubjects = "analytics.>"
)

// Event is the canonical envelope sent to all analytics.* subjects.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	PlayerID   string         `json:"player_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes analytics events to NATS JetStream.
// A nil pointer and a Publisher without JetStream are no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
	now func() time.Time
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub (tests, or services running without NATS).
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log, now: time.Now}
}

// Publish sends an analytics event asynchronously.
// Failures are logged as warnings and never surface to the caller.
func (p *Publisher) Publish(subject, eventName, playerID string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	data, err := json.Marshal(p.envelope(eventName, playerID, props))
	if err != nil {
		p.log.Warn("analytics: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("analytics: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Flush waits for outstanding async publishes or until ctx is done.
func (p *Publisher) Flush(ctx context.Context) {
	if p == nil || p.js == nil {
		return
	}
	select {
	case <-p.js.PublishAsyncComplete():
	case <-ctx.Done():
		p.log.Warn("analytics: flush abandoned", zap.Error(ctx.Err()))
	}
}

func (p *Publisher) envelope(eventName, playerID string, props map[string]any) Event {
	return Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		PlayerID:   playerID,
		OccurredAt: p.now().UTC(),
		Properties: props,
	}
}
