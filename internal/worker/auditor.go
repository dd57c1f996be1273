// Package worker hosts the stock auditor that follows up on placed
// orders. Order creation decrements stock and persists the order as
// separate writes, so a crash in between can leave stock decremented
// with no order on file; the auditor re-reads the referenced records
// after every order.created event and makes anomalies visible in logs.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

// RecordGetter is the catalog read the auditor needs.
type RecordGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Record, error)
}

type StockAuditor struct {
	records           RecordGetter
	lowStockThreshold int
	logger            *slog.Logger
}

func NewStockAuditor(records RecordGetter, lowStockThreshold int, logger *slog.Logger) *StockAuditor {
	return &StockAuditor{
		records:           records,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// Handle processes one order.created event. Audit findings are logged,
// never returned: a missing or low record must not stall the consumer
// group. Only an undecodable payload is an error.
func (a *StockAuditor) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	a.logger.Info("auditing stock for order", "order_id", event.OrderID, "lines", len(event.Lines))

	for _, line := range event.Lines {
		rec, err := a.records.GetByID(ctx, line.RecordID)
		if err != nil {
			a.logger.Error("failed to read record during audit", "error", err,
				"order_id", event.OrderID, "record_id", line.RecordID)
			continue
		}
		if rec == nil {
			a.logger.Error("ordered record no longer exists",
				"order_id", event.OrderID, "record_id", line.RecordID)
			continue
		}

		switch {
		case rec.Quantity < 0:
			a.logger.Error("stock went negative",
				"record_id", rec.ID, "artist", rec.Artist, "album", rec.Album, "qty", rec.Quantity)
		case rec.Quantity <= a.lowStockThreshold:
			a.logger.Warn("stock low",
				"record_id", rec.ID, "artist", rec.Artist, "album", rec.Album, "qty", rec.Quantity)
		}
	}

	return nil
}
