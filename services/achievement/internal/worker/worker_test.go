package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/game-platform/internal/platform/analytics"
	"github.com/example/game-platform/services/achievement/internal/domain"
	"github.com/example/game-platform/services/achievement/internal/notifier"
	"github.com/example/game-platform/services/achievement/internal/session"
	"github.com/example/game-platform/services/achievement/internal/store"
)

type fakeSyncer struct {
	err     error
	players []string
}

func (f *fakeSyncer) SynchronizeBatch(_ context.Context, playerID string) (*notifier.Batch, error) {
	f.players = append(f.players, playerID)
	if f.err != nil {
		return nil, f.err
	}
	return &notifier.Batch{}, nil
}

func TestSyncHandler(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		err     error
		want    outcome
		called  bool
	}{
		{"ok", `{"event_id":"e1","player_id":"10001"}`, nil, ack, true},
		{"invalid json", `{`, nil, term, false},
		{"missing player", `{"event_id":"e1","player_id":"  "}`, nil, term, false},
		{"definition missing", `{"player_id":"10001"}`, &domain.DefinitionNotFoundError{ID: 7}, term, true},
		{"unaddressable player", `{"player_id":"a.b"}`, fmt.Errorf("resolve session: %w", session.ErrInvalidPlayer), term, true},
		{"transport down", `{"player_id":"10001"}`, errors.New("nats: timeout"), nak, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSyncer{err: tc.err}
			got := syncHandler(s, nil)(context.Background(), []byte(tc.payload))
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			if called := len(s.players) == 1; called != tc.called {
				t.Fatalf("syncer called=%v, want %v", called, tc.called)
			}
		})
	}
}

type recordedEvent struct {
	subject, name, player string
	props                 map[string]any
}

type fakeEvents struct{ events []recordedEvent }

func (f *fakeEvents) Publish(subject, eventName, playerID string, props map[string]any) {
	f.events = append(f.events, recordedEvent{subject, eventName, playerID, props})
}

type failingWriter struct{}

func (failingWriter) Apply(context.Context, string, store.Update) (domain.Record, error) {
	return domain.Record{}, errors.New("db down")
}

func TestProgressHandler_AppliesAndPublishes(t *testing.T) {
	st := store.NewMemoryStore()
	ev := &fakeEvents{}
	h := progressHandler(st, ev, nil)
	ctx := context.Background()

	if got := h(ctx, []byte(`{"event_id":"e1","player_id":"10001","achievement_id":3,"progress":2}`)); got != ack {
		t.Fatalf("expected ack, got %s", got)
	}
	if got := h(ctx, []byte(`{"event_id":"e2","player_id":"10001","achievement_id":3,"progress":5,"finished":true,"occurred_at":"2024-03-01T10:00:00Z"}`)); got != ack {
		t.Fatalf("expected ack, got %s", got)
	}

	recs, err := st.ListAll(ctx, "10001")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Status != domain.StatusFinished || rec.CurrentProgress != 5 {
		t.Fatalf("unexpected record %+v", rec)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if rec.FinishedAt == nil || !rec.FinishedAt.Equal(want) {
		t.Fatalf("expected finished at %v, got %v", want, rec.FinishedAt)
	}

	if len(ev.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(ev.events))
	}
	last := ev.events[1]
	if last.subject != analytics.SubjectAchievementProgress || last.player != "10001" || last.props["status"] != "finished" {
		t.Fatalf("unexpected event %+v", last)
	}
}

func TestProgressHandler_Rejections(t *testing.T) {
	h := progressHandler(store.NewMemoryStore(), &fakeEvents{}, nil)
	for _, payload := range []string{
		`not json`,
		`{"player_id":"","achievement_id":1}`,
		`{"player_id":"10001","achievement_id":0}`,
	} {
		if got := h(context.Background(), []byte(payload)); got != term {
			t.Fatalf("payload %q: expected term, got %s", payload, got)
		}
	}
}

func TestProgressHandler_StoreErrorIsRetried(t *testing.T) {
	ev := &fakeEvents{}
	got := progressHandler(failingWriter{}, ev, nil)(context.Background(), []byte(`{"player_id":"10001","achievement_id":1,"progress":1}`))
	if got != nak {
		t.Fatalf("expected nak, got %s", got)
	}
	if len(ev.events) != 0 {
		t.Fatal("no event may be published on failure")
	}
}

func TestOccurredAtFallback(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	if got := occurredAt("yesterday"); got.Before(before) {
		t.Fatalf("expected fallback to now, got %v", got)
	}
}
