package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Activity types emitted by the core.
const (
	ActivityPaperGenerated   = "paper_generated"
	ActivityGenerationFailed = "generation_failed"
)

// Batcher queues activity records and flushes them when the queue reaches
// the threshold or the flush timer fires, whichever comes first. A failed
// delivery puts the flushed records back at the front of the queue, so
// events are never dropped on failure (duplicate delivery is possible when
// the failure was a false negative).
type Batcher struct {
	svc ActivityService
	log *Logger

	mu    sync.Mutex
	queue []ActivityRecord

	threshold int
	timer     TimerHandle

	deliverTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

func NewBatcher(svc ActivityService, sched Scheduler, interval time.Duration, threshold int, log *Logger) *Batcher {
	if threshold <= 0 {
		threshold = 5
	}
	if log == nil {
		log = NopLogger()
	}
	b := &Batcher{
		svc:            svc,
		log:            log,
		threshold:      threshold,
		deliverTimeout: 15 * time.Second,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	b.timer = sched.Every(interval, b.Flush)
	return b
}

// Track queues one record. Reaching the size threshold flushes immediately.
func (b *Batcher) Track(activityType, details, sessionID string) {
	b.mu.Lock()
	b.queue = append(b.queue, ActivityRecord{
		ID:        b.newID(),
		Type:      activityType,
		Details:   details,
		Timestamp: b.now(),
		SessionID: sessionID,
	})
	full := len(b.queue) >= b.threshold
	b.mu.Unlock()

	if full {
		b.Flush()
	}
}

// Flush snapshots the queue, clears it, and attempts delivery. Delivery runs
// outside the lock so Track never blocks on the network.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if len(b.queue) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.queue
	b.queue = nil
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.deliverTimeout)
	defer cancel()
	if err := b.svc.TrackActivity(ctx, batch); err != nil {
		b.log.Error("deliver activity batch", map[string]interface{}{
			"error": err.Error(),
			"count": len(batch),
		})
		b.mu.Lock()
		b.queue = append(batch, b.queue...)
		b.mu.Unlock()
	}
}

// Close stops the flush timer and attempts one final delivery.
func (b *Batcher) Close() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.Flush()
}

// Pending reports the current queue length.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
