package orders

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

func newTestHandler(store *fakeOrderStore, catalog *fakeCatalog) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(NewService(store, catalog, logger), nil, logger)
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("places an order", func(t *testing.T) {
		catalog := newFakeCatalog(abbeyRoad(10))
		handler := newTestHandler(&fakeOrderStore{}, catalog)

		body := `{"lines":[{"record_id":"` + abbeyRoadID + `","quantity":2}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp domain.Order
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.TotalAmount != 50 {
			t.Errorf("expected total 50, got %d", resp.TotalAmount)
		}
		if resp.Status != domain.OrderStatusPending {
			t.Errorf("expected status pending, got %s", resp.Status)
		}
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		handler := newTestHandler(&fakeOrderStore{}, newFakeCatalog())

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{broken`))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on empty order", func(t *testing.T) {
		handler := newTestHandler(&fakeOrderStore{}, newFakeCatalog())

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"lines":[]}`))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 with detail on insufficient stock", func(t *testing.T) {
		catalog := newFakeCatalog(abbeyRoad(1))
		handler := newTestHandler(&fakeOrderStore{}, catalog)

		body := `{"lines":[{"record_id":"` + abbeyRoadID + `","quantity":5}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !strings.Contains(resp["error"], "Abbey Road") {
			t.Errorf("expected album in error, got %q", resp["error"])
		}
		if !strings.Contains(resp["error"], "available 1, requested 5") {
			t.Errorf("expected stock detail in error, got %q", resp["error"])
		}
	})

	t.Run("returns 404 when a record does not exist", func(t *testing.T) {
		handler := newTestHandler(&fakeOrderStore{}, newFakeCatalog())

		body := `{"lines":[{"record_id":"` + missingID + `","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := newTestHandler(&fakeOrderStore{}, newFakeCatalog())

		req := httptest.NewRequest(http.MethodGet, "/orders/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when order does not exist", func(t *testing.T) {
		handler := newTestHandler(&fakeOrderStore{}, newFakeCatalog())

		req := httptest.NewRequest(http.MethodGet, "/orders/"+missingID, nil)
		req.SetPathValue("id", missingID)
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleList(t *testing.T) {
	catalog := newFakeCatalog(abbeyRoad(10))
	store := &fakeOrderStore{}
	handler := newTestHandler(store, catalog)

	body := `{"lines":[{"record_id":"` + abbeyRoadID + `","quantity":1}]}`
	create := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	handler.HandleCreate(httptest.NewRecorder(), create)

	req := httptest.NewRequest(http.MethodGet, "/orders?page=1&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page domain.Page[domain.Order]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Total != 1 || len(page.Data) != 1 {
		t.Errorf("expected 1 order, got total=%d len=%d", page.Total, len(page.Data))
	}
	if page.PageSize != 10 {
		t.Errorf("expected page size 10, got %d", page.PageSize)
	}
}
