package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine is a single requested position of an order: "quantity units of
// item". One placed order produces one Order record per line.
type OrderLine struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// Order is an immutable record of a consumed reservation. Orders are never
// updated or deleted once written.
type Order struct {
	ID        uuid.UUID `json:"id"`
	ItemID    int       `json:"item_id"`
	Quantity  int       `json:"quantity"`
	OrderedBy uuid.UUID `json:"ordered_by"`
	OrderedAt time.Time `json:"ordered_at"`
}
