package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// NotificationMessage is the wire form of a user-facing notification.
type NotificationMessage struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     string    `json:"variant"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes a message and rejects one without an ID
// or title.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.Title == "" {
		return nil, errIncompleteMessage
	}
	return &msg, nil
}

var errIncompleteMessage = errors.New("notification message needs id and title")
