package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"shopcore/pkg/database"
	"shopcore/pkg/model"
)

const (
	DefaultReserveTimeout = 2 * time.Second

	releaseRetries    = 3
	releaseRetryDelay = 100 * time.Millisecond
)

// Ledger owns per-item stock. Reserve and Release on the same item are
// linearizable with respect to each other; different items are independent.
type Ledger interface {
	Reserve(ctx context.Context, itemID, quantity int) error
	Release(ctx context.Context, itemID, quantity int) error
}

type Order interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, lines []model.OrderLine) ([]model.Order, error)
	ListPage(ctx context.Context, f database.OrderFilter) ([]model.Order, int, error)
}

// OrderGeneric turns a batch of requested lines into either a fully committed
// order or a fully rejected one. The ledger is atomic per item only, so
// order-level atomicity is composed here: reserve every line, commit the
// records, and on any failure release what was already granted.
type OrderGeneric struct {
	Ledger          Ledger
	OrderRepository database.OrderRepository
	ReserveTimeout  time.Duration
}

func (og *OrderGeneric) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []model.OrderLine) ([]model.Order, error) {
	if len(lines) == 0 {
		return nil, &model.ValidationError{Reason: "order has no lines"}
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &model.ValidationError{Reason: fmt.Sprintf("quantity for item %d must be positive, got %d", line.ItemID, line.Quantity)}
		}
	}

	// reserve in ascending item order so that two orders touching the same
	// pair of items never acquire the rows in opposite sequence
	sorted := make([]model.OrderLine, len(lines))
	copy(sorted, lines)
	slices.SortStableFunc(sorted, func(a, b model.OrderLine) int { return a.ItemID - b.ItemID })

	reserved := make([]model.OrderLine, 0, len(sorted))
	for _, line := range sorted {
		if err := og.reserve(ctx, line); err != nil {
			og.rollback(ctx, reserved)

			var (
				notFound     *model.NotFoundError
				insufficient *model.InsufficientStockError
			)
			if errors.As(err, &notFound) || errors.As(err, &insufficient) {
				return nil, err
			}

			// timeout or storage failure: the line left no trace, the rest
			// has just been released, so the request may be resubmitted
			return nil, &model.RetryableError{Err: fmt.Errorf("can't reserve %d units of item %d: %w", line.Quantity, line.ItemID, err)}
		}

		reserved = append(reserved, line)
	}

	now := time.Now()
	orders := make([]model.Order, len(sorted))
	for i, line := range sorted {
		orders[i] = model.Order{
			ID:        uuid.New(),
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			OrderedBy: userID,
			OrderedAt: now,
		}
	}

	if err := og.OrderRepository.Add(ctx, orders...); err != nil {
		og.rollback(ctx, reserved)
		return nil, &model.RetryableError{Err: fmt.Errorf("can't save orders: %w", err)}
	}

	return orders, nil
}

func (og *OrderGeneric) reserve(ctx context.Context, line model.OrderLine) error {
	ctx, cancel := context.WithTimeout(ctx, og.reserveTimeout())
	defer cancel()

	return og.Ledger.Reserve(ctx, line.ItemID, line.Quantity)
}

// rollback releases granted reservations in reverse order. It survives
// cancellation of the request context: the stock has really been taken and
// must come back even if the caller is gone.
func (og *OrderGeneric) rollback(ctx context.Context, reserved []model.OrderLine) {
	ctx = context.WithoutCancel(ctx)

	for i := len(reserved) - 1; i >= 0; i-- {
		line := reserved[i]

		if err := og.release(ctx, line); err != nil {
			// stock is leaking out of the ledger, make it visible
			slog.Error("can't release reserved stock",
				slog.Int("item_id", line.ItemID),
				slog.Int("quantity", line.Quantity),
				slog.Any("error", err),
			)
		}
	}
}

func (og *OrderGeneric) release(ctx context.Context, line model.OrderLine) error {
	var err error

	delay := releaseRetryDelay
	for attempt := 0; attempt < releaseRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
		}

		rctx, cancel := context.WithTimeout(ctx, og.reserveTimeout())
		err = og.Ledger.Release(rctx, line.ItemID, line.Quantity)
		cancel()

		var notFound *model.NotFoundError
		if err == nil || errors.As(err, &notFound) {
			return err
		}
	}

	return err
}

func (og *OrderGeneric) reserveTimeout() time.Duration {
	if og.ReserveTimeout > 0 {
		return og.ReserveTimeout
	}
	return DefaultReserveTimeout
}

func (og *OrderGeneric) ListPage(ctx context.Context, f database.OrderFilter) ([]model.Order, int, error) {
	return og.OrderRepository.GetPage(ctx, f)
}
