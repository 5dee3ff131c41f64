package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"shopcore/pkg/model"
)

const itemsKeyPrefix = "items:"

// ItemCaching is a caching layer which is intended to be called before ItemGeneric.
// It may be helpful when single hot items are fetched many times per second.
//
// Cached stock may lag behind the ledger by up to TTL, which is fine for a
// catalog view: the reservation path never reads from here. Errors occurring
// when calling redis are not returned, the slower path is used instead.
type ItemCaching struct {
	Item

	Redis *redis.Client
	TTL   time.Duration
}

func (ic *ItemCaching) Get(ctx context.Context, itemID int) (model.Item, error) {
	key := itemCacheKey(itemID)

	val, err := ic.Redis.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		// do nothing
	case err != nil:
		slog.Error("can't get item from redis", slog.Any("error", err))

	default:
		var item model.Item
		if err := json.Unmarshal([]byte(val), &item); err != nil {
			slog.Error("can't parse cached item", slog.String("val", val), slog.Any("error", err))
			break
		}

		return item, nil
	}

	// slower path - go to DB
	item, err := ic.Item.Get(ctx, itemID)
	if err != nil {
		return model.Item{}, err
	}

	if raw, err := json.Marshal(item); err == nil {
		if err := ic.Redis.Set(ctx, key, raw, ic.TTL).Err(); err != nil {
			slog.Error("can't set item in redis", slog.Any("error", err))
		}
	}

	return item, nil
}

func (ic *ItemCaching) Update(ctx context.Context, item model.Item) error {
	if err := ic.Item.Update(ctx, item); err != nil {
		return err
	}

	ic.invalidate(ctx, item.ID)
	return nil
}

func (ic *ItemCaching) Delete(ctx context.Context, itemID int) error {
	if err := ic.Item.Delete(ctx, itemID); err != nil {
		return err
	}

	ic.invalidate(ctx, itemID)
	return nil
}

func (ic *ItemCaching) Restock(ctx context.Context, itemID, delta int) error {
	if err := ic.Item.Restock(ctx, itemID, delta); err != nil {
		return err
	}

	ic.invalidate(ctx, itemID)
	return nil
}

func (ic *ItemCaching) invalidate(ctx context.Context, itemID int) {
	if err := ic.Redis.Del(ctx, itemCacheKey(itemID)).Err(); err != nil {
		slog.Error("can't invalidate cached item", slog.Int("item_id", itemID), slog.Any("error", err))
	}
}

func itemCacheKey(itemID int) string {
	return itemsKeyPrefix + strconv.Itoa(itemID)
}
