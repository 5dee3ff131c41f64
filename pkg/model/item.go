package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	LastUpdated     time.Time       `json:"last_updated"`
}
