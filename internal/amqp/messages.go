package amqp

import (
	"encoding/json"
	"time"
)

// EntryClosedMessage tells the export worker that a time entry was closed
// and is waiting for timesheet export. It carries only the entry id; the
// worker loads the full entry from the store so the message never goes
// stale.
type EntryClosedMessage struct {
	EntryID   string    `json:"entryId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryClosedMessage(entryID string) *EntryClosedMessage {
	return &EntryClosedMessage{
		EntryID:   entryID,
		Timestamp: time.Now(),
	}
}

func (m *EntryClosedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryClosedMessageFromJSON(data []byte) (*EntryClosedMessage, error) {
	var msg EntryClosedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
