package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

// sortColumns maps API sort fields to order columns.
var sortColumns = map[string]string{
	"created":     "created",
	"totalAmount": "total_amount",
	"status":      "status",
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert persists an order and its lines in one transaction. Lines keep
// their position through line_no so reads return them in request order.
func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, status, total_amount, created)
		VALUES ($1, $2, $3, $4)
	`, order.ID, order.Status, order.TotalAmount, order.Created)
	if err != nil {
		return err
	}

	for i, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, line_no, record_id, quantity, price_at_time)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), order.ID, i, line.RecordID, line.Quantity, line.PriceAtTime)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, status, total_amount, created
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.Status, &order.TotalAmount, &order.Created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, quantity, price_at_time
		FROM order_lines
		WHERE order_id = $1
		ORDER BY line_no
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.RecordID, &line.Quantity, &line.PriceAtTime); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// List returns one page of orders with their lines batch-loaded in a
// second query rather than one query per order.
func (r *OrderRepository) List(ctx context.Context, req domain.PageRequest) ([]domain.Order, error) {
	direction := "DESC"
	if req.SortDir == domain.SortAsc {
		direction = "ASC"
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, total_amount, created
		FROM orders
		ORDER BY `+sortColumns[req.SortBy]+` `+direction+`
		OFFSET $1 LIMIT $2
	`, req.Offset(), req.PageSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Status, &order.TotalAmount, &order.Created); err != nil {
			return nil, err
		}
		order.Lines = []domain.OrderLine{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	lineRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, record_id, quantity, price_at_time
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = lineRows.Close() }()

	for lineRows.Next() {
		var orderID string
		var line domain.OrderLine
		if err := lineRows.Scan(&orderID, &line.RecordID, &line.Quantity, &line.PriceAtTime); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Lines = append(order.Lines, line)
	}

	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
