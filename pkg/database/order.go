package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shopcore/pkg/model"
)

type OrderFilter struct {
	OrderedBy *uuid.UUID // nil lists orders of all users
	PageNum   int
	PageSize  int
}

type OrderRepository interface {
	// Add appends all records in a single statement: either every row of the
	// batch is durably written or none are.
	Add(ctx context.Context, orders ...model.Order) error
	GetPage(ctx context.Context, f OrderFilter) ([]model.Order, int, error)
}

type OrderDatabase struct {
	DB *sql.DB
}

func (od *OrderDatabase) Add(ctx context.Context, orders ...model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	q := buildBatchQuery(len(orders))

	args := make([]any, 0, len(orders)*5)
	for _, o := range orders {
		args = append(args, o.ID, o.ItemID, o.Quantity, o.OrderedBy, o.OrderedAt)
	}

	res, err := od.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert orders: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if int(affected) != len(orders) {
		return fmt.Errorf("expected %d records to be inserted, got %d", len(orders), affected)
	}

	return nil
}

func buildBatchQuery(rows int) string {
	sb := strings.Builder{}
	sb.WriteString("insert into orders (id, item_id, quantity, ordered_by, ordered_at) values ")

	phs := make([]string, 0, rows)

	for i := 0; i < rows; i++ {
		phs = append(phs, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5))
	}

	sb.WriteString(strings.Join(phs, ","))
	return sb.String()
}

func (od *OrderDatabase) GetPage(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	var (
		where string
		args  []any
	)

	if f.OrderedBy != nil {
		where = " where ordered_by = $1"
		args = append(args, *f.OrderedBy)
	}

	var total int
	if err := od.DB.QueryRowContext(ctx, `select count(*) from orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count orders: %w", err)
	}

	offset := (f.PageNum - 1) * f.PageSize
	q := fmt.Sprintf(`
		select id, item_id, quantity, ordered_by, ordered_at
		from orders
		%s
		order by ordered_at desc
		limit $%d offset $%d
	`, where, len(args)+1, len(args)+2)

	rows, err := od.DB.QueryContext(ctx, q, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0, f.PageSize)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.ItemID, &o.Quantity, &o.OrderedBy, &o.OrderedAt); err != nil {
			return nil, 0, fmt.Errorf("can't scan order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over orders: %w", err)
	}

	return orders, total, nil
}
