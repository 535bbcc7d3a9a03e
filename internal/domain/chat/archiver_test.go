package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lexabot/lexa/internal/infra/eventbus"
)

type memRecorder struct {
	mu    sync.Mutex
	turns []StoredMessage
}

func (r *memRecorder) RecordTurn(ctx context.Context, userID, role, content, provider string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var prov *string
	if provider != "" {
		prov = &provider
	}
	r.turns = append(r.turns, StoredMessage{UserID: userID, Role: role, Content: content, Provider: prov, CreatedAt: at})
	return nil
}

func (r *memRecorder) History(ctx context.Context, userID string, limit int) ([]StoredMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StoredMessage
	for _, m := range r.turns {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestArchiverPersistsPublishedTurns(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	rec := &memRecorder{}
	arch := NewArchiver(rec, zap.NewNop())

	ctx := context.Background()
	arch.Start(ctx, bus)

	bus.Publish(TopicMessage, MessageEvent{UserID: "alice", Role: RoleUser, Content: "hi", At: time.Now()})
	bus.Publish(TopicMessage, MessageEvent{UserID: "alice", Role: RoleAssistant, Content: "hello", Provider: "openai", At: time.Now()})

	bus.Close()
	arch.Wait()

	got, _ := rec.History(ctx, "alice", 10)
	if len(got) != 2 {
		t.Fatalf("recorded turns = %d, want 2", len(got))
	}
	if got[1].Provider == nil || *got[1].Provider != "openai" {
		t.Errorf("assistant provider not recorded: %#v", got[1].Provider)
	}
}

func TestArchiverIgnoresForeignPayloads(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	rec := &memRecorder{}
	arch := NewArchiver(rec, zap.NewNop())

	arch.Start(context.Background(), bus)
	bus.Publish(TopicMessage, "not a message event")
	bus.Close()
	arch.Wait()

	if len(rec.turns) != 0 {
		t.Fatalf("recorded %d turns from malformed payload", len(rec.turns))
	}
}
