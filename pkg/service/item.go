package service

import (
	"context"

	"shopcore/pkg/database"
	"shopcore/pkg/model"
)

const (
	DefaultPageNum  = 1
	DefaultPageSize = 10
)

type ListFilter struct {
	Query    string
	PageNum  int
	PageSize int
}

type Item interface {
	Get(ctx context.Context, itemID int) (model.Item, error)
	ListPage(ctx context.Context, role model.Role, f ListFilter) ([]model.Item, int, error)
	Create(ctx context.Context, items ...model.Item) ([]model.Item, error)
	Update(ctx context.Context, item model.Item) error
	Delete(ctx context.Context, itemID int) error
	Restock(ctx context.Context, itemID, delta int) error
}

// ItemGeneric represents an implementation of Item interface containing core logics
// which can be wrapped in other implementations contained in item_*.go.
type ItemGeneric struct {
	ItemRepository database.ItemRepository
}

func (ig *ItemGeneric) Get(ctx context.Context, itemID int) (model.Item, error) {
	return ig.ItemRepository.Get(ctx, itemID)
}

// ListPage hides out-of-stock items from non-privileged callers. The filter
// is a read-time view only: it does not affect reservations in any way.
func (ig *ItemGeneric) ListPage(ctx context.Context, role model.Role, f ListFilter) ([]model.Item, int, error) {
	return ig.ItemRepository.GetPage(ctx, database.ItemFilter{
		Query:       f.Query,
		InStockOnly: !role.Privileged(),
		PageNum:     f.PageNum,
		PageSize:    f.PageSize,
	})
}

func (ig *ItemGeneric) Create(ctx context.Context, items ...model.Item) ([]model.Item, error) {
	for _, item := range items {
		if item.Name == "" {
			return nil, &model.ValidationError{Reason: "item name must not be empty"}
		}
		if item.Price.IsNegative() {
			return nil, &model.ValidationError{Reason: "item price must not be negative"}
		}
		if item.QuantityInStock < 0 {
			return nil, &model.ValidationError{Reason: "item stock must not be negative"}
		}
	}

	return ig.ItemRepository.Add(ctx, items...)
}

func (ig *ItemGeneric) Update(ctx context.Context, item model.Item) error {
	if item.Name == "" {
		return &model.ValidationError{Reason: "item name must not be empty"}
	}
	if item.Price.IsNegative() {
		return &model.ValidationError{Reason: "item price must not be negative"}
	}

	return ig.ItemRepository.Update(ctx, item)
}

func (ig *ItemGeneric) Delete(ctx context.Context, itemID int) error {
	return ig.ItemRepository.Delete(ctx, itemID)
}

// Restock adjusts stock by delta through the same ledger primitives that
// order placement uses, so manual corrections can't race with reservations.
// A negative delta is refused the same way an oversized order line is.
func (ig *ItemGeneric) Restock(ctx context.Context, itemID, delta int) error {
	switch {
	case delta > 0:
		return ig.ItemRepository.Release(ctx, itemID, delta)
	case delta < 0:
		return ig.ItemRepository.Reserve(ctx, itemID, -delta)
	default:
		return &model.ValidationError{Reason: "restock delta must not be zero"}
	}
}
