package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lexabot/lexa/internal/infra/eventbus"
)

// Archiver drains chat.message events off the bus and writes them through a
// Recorder. It runs on its own goroutine so a slow database never stalls a
// dispatch.
type Archiver struct {
	recorder Recorder
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewArchiver(recorder Recorder, log *zap.Logger) *Archiver {
	return &Archiver{recorder: recorder, log: log}
}

// Start subscribes to the message topic and consumes until the bus closes
// the channel or ctx is cancelled.
func (a *Archiver) Start(ctx context.Context, bus eventbus.EventBus) {
	ch := bus.Subscribe(TopicMessage)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				a.handle(ctx, evt)
			}
		}
	}()
}

// Wait blocks until the consumer loop has exited.
func (a *Archiver) Wait() {
	a.wg.Wait()
}

func (a *Archiver) handle(ctx context.Context, evt eventbus.Event) {
	msg, ok := evt.Payload.(MessageEvent)
	if !ok {
		a.log.Warn("archiver: unexpected payload type", zap.String("topic", evt.Topic))
		return
	}
	if err := a.recorder.RecordTurn(ctx, msg.UserID, msg.Role, msg.Content, msg.Provider, msg.At); err != nil {
		a.log.Error("archiver: record turn",
			zap.String("user_id", msg.UserID),
			zap.Error(err))
	}
}
