package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shopcore/pkg/model"
)

type OrderLogging struct {
	Order
}

func (ol *OrderLogging) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []model.OrderLine) (orders []model.Order, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("user_id", userID.String()),
			slog.Int("lines", len(lines)),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to place order", slog.Any("error", err))
		} else {
			log.Debug("order placed", slog.Int("records", len(orders)))
		}
	}(time.Now())

	return ol.Order.PlaceOrder(ctx, userID, lines)
}
