package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, customer_name, customer_phone, total_amount, status, daily_number, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.Total, &o.Status, &o.DailyNumber, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

func (r *orderRepository) CountOrdersSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE created_at >= $1`
	var n int
	if err := r.storage.pool.QueryRow(ctx, query, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *orderRepository) CountOrdersForPhone(ctx context.Context, phone string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE customer_phone=$1 AND created_at >= $2`
	var n int
	if err := r.storage.pool.QueryRow(ctx, query, phone, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order model.NewOrder) (*model.Order, error) {
	const query = `INSERT INTO orders (customer_name, customer_phone, total_amount, status, daily_number)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING ` + orderColumns
	row := r.storage.pool.QueryRow(ctx, query, order.CustomerName, order.CustomerPhone, order.Total, model.OrderStatusPending, order.DailyNumber)
	return scanOrder(row)
}

// CreateOrderLines inserts every line in one transaction so the batch is all-or-nothing.
func (r *orderRepository) CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []model.OrderLine) error {
	const insertLine = `INSERT INTO order_items (order_id, menu_item_id, item_name_fr, item_name_ar, quantity, unit_price)
                        VALUES ($1, $2, $3, $4, $5, $6)`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, l := range lines {
			if _, err := tx.Exec(ctx, insertLine, orderID, l.MenuItemID, l.NameFr, l.NameAr, l.Quantity, l.UnitPrice); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateOrderStatus is a compare-and-set on the status column, so concurrent
// transitions of one order cannot both succeed.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	tag, err := r.storage.pool.Exec(ctx, query, to, orderID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current model.OrderStatus
	err = r.storage.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return fmt.Errorf("%w: order is %s, not %s", domainErrors.ErrInvalidTransition, current, from)
}

// DeleteOrder removes the header; lines go with it through ON DELETE CASCADE.
func (r *orderRepository) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.linesFor(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Lines = lines[order.ID]
	return order, nil
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, phone string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE customer_phone=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result []model.Order
		ids    []uuid.UUID
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Lines = lines[result[i].ID]
	}
	r.storage.logger.Debug("order history loaded", slog.String("phone", phone), slog.Int("orders", len(result)))
	return result, nil
}

func (r *orderRepository) linesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]model.OrderLine, error) {
	const query = `SELECT order_id, menu_item_id, item_name_fr, item_name_ar, quantity, unit_price
                   FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[uuid.UUID][]model.OrderLine, len(ids))
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.OrderID, &l.MenuItemID, &l.NameFr, &l.NameAr, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines[l.OrderID] = append(lines[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
