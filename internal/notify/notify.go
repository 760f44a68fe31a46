// Package notify delivers user-facing notifications: the toasts the UI shows
// after an import, export, payment or settings change.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
	Time        time.Time `json:"time"`
}

// New returns a success notification stamped with a fresh ID.
func New(title, description string) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Variant:     VariantDefault,
		Time:        time.Now(),
	}
}

// Failure returns a destructive notification.
func Failure(title, description string) Notification {
	n := New(title, description)
	n.Variant = VariantDestructive
	return n
}

// Message converts n to its AMQP wire form.
func (n Notification) Message() *amqp.NotificationMessage {
	return &amqp.NotificationMessage{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Variant:     string(n.Variant),
		Timestamp:   n.Time,
	}
}

// FromMessage is the inverse of Message.
func FromMessage(m *amqp.NotificationMessage) Notification {
	return Notification{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Variant:     Variant(m.Variant),
		Time:        m.Timestamp,
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Multi fans a notification out to every notifier. All are attempted; their
// errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if nt == nil {
			continue
		}
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	args := []any{"id", n.ID, "title", n.Title, "variant", n.Variant}
	if n.Description != "" {
		args = append(args, "description", n.Description)
	}
	if n.Variant == VariantDestructive {
		l.logger.WarnContext(ctx, "Notification", args...)
	} else {
		l.logger.InfoContext(ctx, "Notification", args...)
	}
	return nil
}

// Publisher is the slice of the AMQP client the notifier needs.
type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// AMQPNotifier forwards notifications to the message bus.
type AMQPNotifier struct {
	pub Publisher
}

func NewAMQPNotifier(pub Publisher) *AMQPNotifier {
	return &AMQPNotifier{pub: pub}
}

func (a *AMQPNotifier) Notify(ctx context.Context, n Notification) error {
	return a.pub.PublishNotification(ctx, n.Message())
}

// History keeps the most recent notifications, newest first.
type History struct {
	mu    sync.Mutex
	size  int
	items []Notification
}

func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{size: size}
}

func (h *History) Notify(_ context.Context, n Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append([]Notification{n}, h.items...)
	if len(h.items) > h.size {
		h.items = h.items[:h.size]
	}
	return nil
}

// Recent returns a copy of the retained notifications, newest first.
func (h *History) Recent() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Notification(nil), h.items...)
}

// Last returns the newest notification, if any.
func (h *History) Last() (Notification, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.items) == 0 {
		return Notification{}, false
	}
	return h.items[0], true
}
