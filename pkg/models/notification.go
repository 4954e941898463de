package models

import (
	"encoding/json"
	"time"
)

// Notification is an in-app notification addressed to an operator.
type Notification struct {
	ID        int64           `json:"id"`
	Titre     string          `json:"titre"`
	Message   string          `json:"message"`
	Type      string          `json:"type,omitempty"`
	Lu        bool            `json:"lu"`
	Lien      string          `json:"lien,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
