package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"shopcore/pkg/limiter"
	"shopcore/pkg/model"
)

var ErrLimitExceeded = errors.New("user exceeded his order limit")

// OrderLimiting is a wrapper over Order service
// which makes sure that user can place no more than Limiter.Limit orders per hour.
//
// If failed to check limits, the behavior depends on FailOpen flag. If set, current request is allowed.
// Otherwise, an error will be returned.
type OrderLimiting struct {
	Order

	Limiter  *limiter.Limiter
	FailOpen bool
}

func (ol *OrderLimiting) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []model.OrderLine) ([]model.Order, error) {
	exceeded, err := ol.Limiter.LimitExceeded(ctx, userID)
	if err != nil {
		if !ol.FailOpen {
			return nil, fmt.Errorf("can't check if limit exceeded: %w", err)
		}

		slog.Error("can't check if limit exceeded", slog.Any("error", err))
	}

	if exceeded {
		return nil, ErrLimitExceeded
	}

	orders, err := ol.Order.PlaceOrder(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	if _, err := ol.Limiter.Increment(ctx, userID); err != nil {
		slog.Error("can't increment user's limit", slog.Any("error", err))
	}

	return orders, nil
}
