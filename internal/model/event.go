package model

import (
	"encoding/json"
	"time"
)

// Event is an audit-trail record attached to an element.
type Event struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	ElementID string          `json:"element_id"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
