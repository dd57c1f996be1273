package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

// sortFields is the set of fields an order listing may be sorted by.
var sortFields = map[string]bool{
	"created":     true,
	"totalAmount": true,
	"status":      true,
}

// OrderStore is the order persistence contract. GetByID returns
// (nil, nil) when no order exists.
type OrderStore interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, req domain.PageRequest) ([]domain.Order, error)
	Count(ctx context.Context) (int, error)
}

// CatalogStore is the slice of the catalog the fulfillment service
// needs: current-state reads (deliberately uncached, stock must be
// fresh) and the atomic stock decrement.
type CatalogStore interface {
	GetByID(ctx context.Context, id string) (*domain.Record, error)
	DecrementStock(ctx context.Context, id string, quantity int) error
}

// Service validates and executes orders against the catalog.
type Service struct {
	orders  OrderStore
	catalog CatalogStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(orders OrderStore, catalog CatalogStore, logger *slog.Logger) *Service {
	return &Service{
		orders:  orders,
		catalog: catalog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// LineInput is one requested (record, quantity) pair.
type LineInput struct {
	RecordID string
	Quantity int
}

// Create places an order in two passes. The first pass validates every
// line in request order (well-formed ID, record exists, enough stock)
// and snapshots prices, so a failing line aborts the order before any
// stock is touched. The second pass decrements stock line by line and
// then persists the order as pending. The same record may appear on
// several lines; each line decrements independently.
//
// The commit pass spans several single-row writes, not one transaction:
// if a write fails partway, stock already decremented stays decremented
// and no order is recorded. That window is logged loudly per line so it
// is visible operationally instead of silently swallowed.
func (s *Service) Create(ctx context.Context, lines []LineInput) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	var totalAmount int64

	for i, line := range lines {
		if _, err := uuid.Parse(line.RecordID); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", domain.ErrInvalidID, i+1, line.RecordID)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d: quantity must be at least 1", domain.ErrInvalidInput, i+1)
		}

		rec, err := s.catalog.GetByID(ctx, line.RecordID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: record %s", domain.ErrNotFound, line.RecordID)
		}

		if rec.Quantity < line.Quantity {
			return nil, &domain.InsufficientStockError{
				Artist:    rec.Artist,
				Album:     rec.Album,
				Available: rec.Quantity,
				Requested: line.Quantity,
			}
		}

		orderLines = append(orderLines, domain.OrderLine{
			RecordID:    line.RecordID,
			Quantity:    line.Quantity,
			PriceAtTime: rec.Price,
		})
		totalAmount += rec.Price * int64(line.Quantity)
	}

	for i, line := range orderLines {
		if err := s.catalog.DecrementStock(ctx, line.RecordID, line.Quantity); err != nil {
			// Lines before i are already committed with no order to
			// show for them.
			for _, committed := range orderLines[:i] {
				s.logger.Error("stock decremented without a persisted order",
					"record_id", committed.RecordID, "quantity", committed.Quantity)
			}
			return nil, err
		}
	}

	order := &domain.Order{
		Lines:       orderLines,
		TotalAmount: totalAmount,
		Status:      domain.OrderStatusPending,
		Created:     s.now(),
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		for _, committed := range orderLines {
			s.logger.Error("stock decremented without a persisted order",
				"record_id", committed.RecordID, "quantity", committed.Quantity)
		}
		return nil, err
	}

	s.logger.Info("order created", "order_id", order.ID, "lines", len(order.Lines), "total_amount", order.TotalAmount)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, id)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	return order, nil
}

func (s *Service) List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Order], error) {
	req = req.Normalize(sortFields)

	orders, err := s.orders.List(ctx, req)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	total, err := s.orders.Count(ctx)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	return domain.NewPage(orders, total, req), nil
}
