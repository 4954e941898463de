// Package models mirrors the records owned by the pressing backend.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers on the backend wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Timestamps are shared by every backend record.
type Timestamps struct {
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
