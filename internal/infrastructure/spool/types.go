package spool

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry holds a serialized activity record awaiting a retry against the
// primary activity log.
type Entry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Priority <= 0 || e.Priority > 5 {
		e.Priority = 3
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
