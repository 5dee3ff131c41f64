package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shopcore/pkg/model"
)

type ItemFilter struct {
	Query       string // optional name filter
	InStockOnly bool   // hide items with zero stock
	PageNum     int
	PageSize    int
}

type ItemRepository interface {
	// Reserve atomically consumes quantity units of the item's stock,
	// provided the current stock covers it. The check and the decrement are
	// a single conditional UPDATE, so concurrent reservations against one
	// item serialize on the row and can never jointly overdraw it.
	Reserve(ctx context.Context, itemID, quantity int) error
	// Release puts quantity units back. It must only be used to undo a
	// prior successful Reserve of the same quantity or to restock.
	Release(ctx context.Context, itemID, quantity int) error

	Get(ctx context.Context, itemID int) (model.Item, error)
	GetPage(ctx context.Context, f ItemFilter) ([]model.Item, int, error)
	Add(ctx context.Context, items ...model.Item) ([]model.Item, error)
	Update(ctx context.Context, item model.Item) error
	Delete(ctx context.Context, itemID int) error
}

type ItemDatabase struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

func NewItemDatabase(db *sql.DB) (*ItemDatabase, error) {
	idb := &ItemDatabase{
		db,
		make(map[string]*sql.Stmt),
	}

	for _, s := range stmts {
		prepared, err := db.Prepare(s.query)
		if err != nil {
			return nil, fmt.Errorf("can't prepare query '%s': %w", s.name, err)
		}

		idb.stmts[s.name] = prepared
	}

	return idb, nil
}

type preparedStmt struct {
	name  string
	query string
}

var (
	stmts = []preparedStmt{
		{
			name: "reserve_stock",
			query: `
				update items
				set quantity_in_stock = quantity_in_stock - $1,
				    last_updated = $2
				where id = $3
				  and quantity_in_stock >= $1
			`,
		},
		{
			name: "release_stock",
			query: `
				update items
				set quantity_in_stock = quantity_in_stock + $1,
				    last_updated = $2
				where id = $3
			`,
		},
	}
)

func (i *ItemDatabase) Reserve(ctx context.Context, itemID, quantity int) error {
	if quantity <= 0 {
		return &model.ValidationError{Reason: "reserve quantity must be positive, got " + strconv.Itoa(quantity)}
	}

	res, err := i.stmts["reserve_stock"].ExecContext(ctx, quantity, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("can't decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// the row either does not exist or does not cover the quantity
	var available int
	err = i.db.QueryRowContext(ctx, `select quantity_in_stock from items where id = $1`, itemID).Scan(&available)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &model.NotFoundError{ItemID: itemID}
	case err != nil:
		return fmt.Errorf("can't query stock: %w", err)
	}

	if available < 0 {
		// the conditional update makes this unreachable; seeing it means the
		// atomicity primitive itself is broken
		panic(fmt.Sprintf("stock of item %d is negative (%d)", itemID, available))
	}

	return &model.InsufficientStockError{ItemID: itemID, Requested: quantity, Available: available}
}

func (i *ItemDatabase) Release(ctx context.Context, itemID, quantity int) error {
	if quantity <= 0 {
		return &model.ValidationError{Reason: "release quantity must be positive, got " + strconv.Itoa(quantity)}
	}

	res, err := i.stmts["release_stock"].ExecContext(ctx, quantity, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("can't increment stock: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return &model.NotFoundError{ItemID: itemID}
	}

	return nil
}

func (i *ItemDatabase) Get(ctx context.Context, itemID int) (model.Item, error) {
	q := `
		select id, name, coalesce(description, ''), price, quantity_in_stock, last_updated
		from items
		where id = $1
	`

	var item model.Item
	err := i.db.QueryRowContext(ctx, q, itemID).
		Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.QuantityInStock, &item.LastUpdated)
	if err != nil {
		return model.Item{}, mapError(err)
	}

	return item, nil
}

func (i *ItemDatabase) GetPage(ctx context.Context, f ItemFilter) ([]model.Item, int, error) {
	where, args := buildItemFilter(f)

	var total int
	if err := i.db.QueryRowContext(ctx, `select count(*) from items`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count items: %w", err)
	}

	offset := (f.PageNum - 1) * f.PageSize
	q := fmt.Sprintf(`
		select id, name, coalesce(description, ''), price, quantity_in_stock, last_updated
		from items
		%s
		order by id
		limit $%d offset $%d
	`, where, len(args)+1, len(args)+2)

	rows, err := i.db.QueryContext(ctx, q, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query items: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0, f.PageSize)
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.QuantityInStock, &item.LastUpdated); err != nil {
			return nil, 0, fmt.Errorf("can't scan item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over items: %w", err)
	}

	return items, total, nil
}

func buildItemFilter(f ItemFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		conds = append(conds, fmt.Sprintf("name ilike $%d", len(args)))
	}

	if f.InStockOnly {
		conds = append(conds, "quantity_in_stock > 0")
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " where " + strings.Join(conds, " and "), args
}

func (i *ItemDatabase) Add(ctx context.Context, items ...model.Item) ([]model.Item, error) {
	if len(items) == 0 {
		return nil, nil
	}

	q := `
		insert into items (name, description, price, quantity_in_stock, last_updated)
		values ($1, $2, $3, $4, $5)
		returning id, last_updated
	`

	added := make([]model.Item, 0, len(items))

	err := WithTx(ctx, i.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, q)
		if err != nil {
			return fmt.Errorf("can't prepare stmt for inserting item: %w", err)
		}

		now := time.Now()
		for _, item := range items {
			desc := sql.NullString{String: item.Description, Valid: item.Description != ""}

			err := stmt.QueryRowContext(ctx, item.Name, desc, item.Price, item.QuantityInStock, now).
				Scan(&item.ID, &item.LastUpdated)
			if err != nil {
				return fmt.Errorf("can't insert item: %w", err)
			}

			added = append(added, item)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return added, nil
}

// Update changes the descriptive fields only. Stock mutations go through
// Reserve/Release so that they can never race with in-flight reservations.
func (i *ItemDatabase) Update(ctx context.Context, item model.Item) error {
	q := `
		update items
		set name = $1, description = $2, price = $3, last_updated = $4
		where id = $5
	`

	desc := sql.NullString{String: item.Description, Valid: item.Description != ""}

	res, err := i.db.ExecContext(ctx, q, item.Name, desc, item.Price, time.Now(), item.ID)
	if err != nil {
		return fmt.Errorf("can't update item: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return &model.NotFoundError{ItemID: item.ID}
	}

	return nil
}

func (i *ItemDatabase) Delete(ctx context.Context, itemID int) error {
	res, err := i.db.ExecContext(ctx, `delete from items where id = $1`, itemID)
	if err != nil {
		// the FK from orders keeps referenced items alive
		return fmt.Errorf("can't delete item: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return &model.NotFoundError{ItemID: itemID}
	}

	return nil
}
