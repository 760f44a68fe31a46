// Package worker handles notifications consumed from the message bus.
package worker

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
)

// NotificationWorker forwards bus messages to a notifier, skipping IDs it
// has already delivered. Redelivered messages are therefore shown once.
type NotificationWorker struct {
	sink   notify.Notifier
	logger *log.Logger

	mu    sync.Mutex
	seen  map[string]*list.Element
	order *list.List
	size  int
}

func NewNotificationWorker(sink notify.Notifier, logger *log.Logger, dedupSize int) *NotificationWorker {
	if dedupSize <= 0 {
		dedupSize = 256
	}
	return &NotificationWorker{
		sink:   sink,
		logger: logger.WithComponent(log.ComponentNotify),
		seen:   make(map[string]*list.Element),
		order:  list.New(),
		size:   dedupSize,
	}
}

// HandleNotification is the amqp.Client consumer callback. A returned error
// makes the client nack and requeue the message.
func (w *NotificationWorker) HandleNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	if !w.remember(msg.ID) {
		w.logger.DebugContext(ctx, "Duplicate notification skipped", "id", msg.ID)
		return nil
	}

	n := notify.FromMessage(msg)
	if err := w.sink.Notify(ctx, n); err != nil {
		w.forget(msg.ID)
		return fmt.Errorf("deliver notification %s: %w", msg.ID, err)
	}

	w.logger.InfoContext(ctx, "Notification delivered",
		"id", n.ID,
		"title", n.Title,
		"variant", n.Variant)
	return nil
}

// remember records id and reports whether it was new.
func (w *NotificationWorker) remember(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[id]; ok {
		return false
	}
	w.seen[id] = w.order.PushFront(id)
	if w.order.Len() > w.size {
		oldest := w.order.Back()
		w.order.Remove(oldest)
		delete(w.seen, oldest.Value.(string))
	}
	return true
}

func (w *NotificationWorker) forget(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if el, ok := w.seen[id]; ok {
		w.order.Remove(el)
		delete(w.seen, id)
	}
}
