package stats

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventKind distinguishes usage event targets.
type EventKind string

const (
	EventItem  EventKind = "item"
	EventSkill EventKind = "skill"
)

// UsageEvent is one gameplay usage notification from the event source.
type UsageEvent struct {
	PlayerID int64
	Kind     EventKind
	RefID    int64 // item or skill id
	Count    int
}

// Feed ingests usage events asynchronously. Events queue on a channel and a
// single worker applies them as usage upserts, so bursts from the gameplay
// event source never block the read path.
type Feed struct {
	svc    *Service
	ch     chan UsageEvent
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewFeed creates a Feed and starts its background worker.
func NewFeed(svc *Service, buffer int, logger *zap.Logger) *Feed {
	if buffer <= 0 {
		buffer = 1024
	}
	f := &Feed{
		svc:    svc,
		ch:     make(chan UsageEvent, buffer),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	f.wg.Add(1)
	go f.worker()
	return f
}

// Enqueue queues an event for async processing. A full queue drops the
// event with a warning rather than blocking the caller.
func (f *Feed) Enqueue(ev UsageEvent) {
	select {
	case f.ch <- ev:
	default:
		f.logger.Warn("usage feed full, dropping event",
			zap.Int64("player_id", ev.PlayerID),
			zap.String("kind", string(ev.Kind)))
	}
}

// Stop drains remaining events and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (f *Feed) Stop() {
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	f.wg.Wait()
}

func (f *Feed) worker() {
	defer f.wg.Done()
	for {
		select {
		case ev := <-f.ch:
			f.apply(ev)
		case <-f.stopCh:
			for {
				select {
				case ev := <-f.ch:
					f.apply(ev)
				default:
					return
				}
			}
		}
	}
}

func (f *Feed) apply(ev UsageEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch ev.Kind {
	case EventItem:
		err = f.svc.RecordItemUse(ctx, ev.PlayerID, ev.RefID, ev.Count)
	case EventSkill:
		err = f.svc.RecordSkillUse(ctx, ev.PlayerID, ev.RefID, ev.Count)
	default:
		f.logger.Warn("usage feed: unknown event kind", zap.String("kind", string(ev.Kind)))
		return
	}
	if err != nil {
		f.logger.Error("usage feed apply failed",
			zap.Int64("player_id", ev.PlayerID),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err))
	}
}
