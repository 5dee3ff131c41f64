package service

import (
	"context"
	"log/slog"
	"time"

	"shopcore/pkg/model"
)

// ItemLogging logs catalog mutations. Reads are covered by the HTTP
// middleware and stay quiet here.
type ItemLogging struct {
	Item
}

func (il *ItemLogging) Create(ctx context.Context, items ...model.Item) (added []model.Item, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int("count", len(items)),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to create items", slog.Any("error", err))
		} else {
			log.Debug("items created")
		}
	}(time.Now())

	return il.Item.Create(ctx, items...)
}

func (il *ItemLogging) Update(ctx context.Context, item model.Item) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int("item_id", item.ID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to update item", slog.Any("error", err))
		} else {
			log.Debug("item updated")
		}
	}(time.Now())

	return il.Item.Update(ctx, item)
}

func (il *ItemLogging) Delete(ctx context.Context, itemID int) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int("item_id", itemID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to delete item", slog.Any("error", err))
		} else {
			log.Debug("item deleted")
		}
	}(time.Now())

	return il.Item.Delete(ctx, itemID)
}

func (il *ItemLogging) Restock(ctx context.Context, itemID, delta int) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int("item_id", itemID),
			slog.Int("delta", delta),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to restock item", slog.Any("error", err))
		} else {
			log.Info("item restocked")
		}
	}(time.Now())

	return il.Item.Restock(ctx, itemID, delta)
}
