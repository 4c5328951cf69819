package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradehub-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateTx inserts the order with its items and decrements each product's
	// stock, all inside one transaction. Any failure rolls the whole set back.
	CreateTx(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Order, error)
	List(ctx context.Context, filter *Filter, limit, offset int32) ([]*Order, error)

	// UpdateStatus performs a conditional update keyed on the expected current
	// status. It reports false when no row matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next OrderStatus) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	o.id, o.order_number, o.buyer_id, o.seller_id, o.status, o.total_amount,
	o.shipping_name, o.shipping_address, o.shipping_city, o.shipping_state,
	o.shipping_zip, o.shipping_country, o.shipping_phone,
	o.created_at, o.updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.BuyerID, &o.SellerID, &o.Status, &o.TotalAmount,
		&o.Shipping.FullName, &o.Shipping.Address, &o.Shipping.City, &o.Shipping.State,
		&o.Shipping.ZipCode, &o.Shipping.Country, &o.Shipping.Phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) CreateTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateTx"),
		zap.String("order_id", o.ID.String()),
		zap.Int("item_count", len(o.Items)),
	)

	log.Debug("starting order creation transaction")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, buyer_id, seller_id, status, total_amount,
			shipping_name, shipping_address, shipping_city, shipping_state,
			shipping_zip, shipping_country, shipping_phone,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		o.ID,
		o.OrderNumber,
		o.BuyerID,
		o.SellerID,
		o.Status,
		o.TotalAmount,
		o.Shipping.FullName,
		o.Shipping.Address,
		o.Shipping.City,
		o.Shipping.State,
		o.Shipping.ZipCode,
		o.Shipping.Country,
		o.Shipping.Phone,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, title, quantity, price)
			VALUES ($1,$2,$3,$4,$5,$6)
		`,
			item.ID,
			o.ID,
			item.ProductID,
			item.Title,
			item.Quantity,
			item.Price,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			return err
		}

		// Conditional decrement: zero affected rows means a concurrent sale
		// drained the stock since validation, so the whole order aborts.
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - $1, updated_at = NOW()
			WHERE id = $2 AND quantity >= $1
		`, item.Quantity, item.ProductID)
		if err != nil {
			log.Error("failed to decrement stock",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			return err
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			log.Warn("stock decrement rejected",
				zap.Int("item_index", i),
				zap.Int("requested", item.Quantity),
			)
			return fmt.Errorf("%w: %s", ErrInsufficientStock, item.Title)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order transaction committed",
		zap.String("order_number", o.OrderNumber),
		zap.Float64("total_amount", o.TotalAmount),
	)

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	return o, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.buyer_id = $1
		ORDER BY o.created_at DESC`
	return r.queryOrders(ctx, query, buyerID)
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.seller_id = $1
		ORDER BY o.created_at DESC`
	return r.queryOrders(ctx, query, sellerID)
}

func (r *repository) List(ctx context.Context, filter *Filter, limit, offset int32) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter != nil && filter.Status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return r.queryOrders(ctx, query, args...)
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	var ids []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}

	return orders, nil
}

func (r *repository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, title, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY title
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]OrderItem)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Title, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	return items, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, next, id, expected)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
