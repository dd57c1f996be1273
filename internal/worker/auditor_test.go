package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

type fakeRecords struct {
	records map[string]*domain.Record
	err     error
}

func (f *fakeRecords) GetByID(_ context.Context, id string) (*domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[id], nil
}

func eventPayload(t *testing.T, event domain.OrderCreatedEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return payload
}

func TestStockAuditor_Handle(t *testing.T) {
	ctx := context.Background()

	event := domain.OrderCreatedEvent{
		OrderID: "order-1",
		Lines:   []domain.OrderLine{{RecordID: "rec-1", Quantity: 2, PriceAtTime: 25}},
	}

	t.Run("warns on low stock", func(t *testing.T) {
		records := &fakeRecords{records: map[string]*domain.Record{
			"rec-1": {ID: "rec-1", Artist: "The Beatles", Album: "Abbey Road", Quantity: 3},
		}}

		var logs bytes.Buffer
		auditor := NewStockAuditor(records, 5, slog.New(slog.NewJSONHandler(&logs, nil)))

		if err := auditor.Handle(ctx, eventPayload(t, event)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(logs.String(), "stock low") {
			t.Errorf("expected low stock warning, got: %s", logs.String())
		}
	})

	t.Run("silent when stock is above threshold", func(t *testing.T) {
		records := &fakeRecords{records: map[string]*domain.Record{
			"rec-1": {ID: "rec-1", Quantity: 50},
		}}

		var logs bytes.Buffer
		auditor := NewStockAuditor(records, 5, slog.New(slog.NewJSONHandler(&logs, nil)))

		if err := auditor.Handle(ctx, eventPayload(t, event)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(logs.String(), "stock low") || strings.Contains(logs.String(), "negative") {
			t.Errorf("expected no findings, got: %s", logs.String())
		}
	})

	t.Run("flags negative stock", func(t *testing.T) {
		records := &fakeRecords{records: map[string]*domain.Record{
			"rec-1": {ID: "rec-1", Quantity: -1},
		}}

		var logs bytes.Buffer
		auditor := NewStockAuditor(records, 5, slog.New(slog.NewJSONHandler(&logs, nil)))

		if err := auditor.Handle(ctx, eventPayload(t, event)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(logs.String(), "stock went negative") {
			t.Errorf("expected negative stock finding, got: %s", logs.String())
		}
	})

	t.Run("flags missing record without failing", func(t *testing.T) {
		records := &fakeRecords{records: map[string]*domain.Record{}}

		var logs bytes.Buffer
		auditor := NewStockAuditor(records, 5, slog.New(slog.NewJSONHandler(&logs, nil)))

		if err := auditor.Handle(ctx, eventPayload(t, event)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(logs.String(), "ordered record no longer exists") {
			t.Errorf("expected missing record finding, got: %s", logs.String())
		}
	})

	t.Run("read failures do not fail the event", func(t *testing.T) {
		records := &fakeRecords{err: errors.New("connection refused")}

		var logs bytes.Buffer
		auditor := NewStockAuditor(records, 5, slog.New(slog.NewJSONHandler(&logs, nil)))

		if err := auditor.Handle(ctx, eventPayload(t, event)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(logs.String(), "failed to read record during audit") {
			t.Errorf("expected read failure log, got: %s", logs.String())
		}
	})

	t.Run("rejects undecodable payload", func(t *testing.T) {
		auditor := NewStockAuditor(&fakeRecords{}, 5,
			slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

		if err := auditor.Handle(ctx, []byte(`{broken`)); err == nil {
			t.Error("expected error for undecodable payload")
		}
	})
}
