package catalog

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

func newTestHandler(store *fakeStore) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(newTestService(store, &fakeEnricher{}), logger)
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates record", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		body := `{"artist":"The Beatles","album":"Abbey Road","price":25,"qty":10,"format":"VINYL","category":"ROCK"}`
		req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp domain.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ID == "" {
			t.Error("expected id in response")
		}
		if resp.Price != 25 || resp.Quantity != 10 {
			t.Errorf("unexpected price/qty: %d/%d", resp.Price, resp.Quantity)
		}
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown format", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		body := `{"artist":"a","album":"b","price":1,"qty":1,"format":"BETAMAX","category":"ROCK"}`
		req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		store := newFakeStore()
		store.insertErr = domain.ErrConflict
		handler := newTestHandler(store)

		body := `{"artist":"a","album":"b","price":1,"qty":1,"format":"VINYL","category":"ROCK"}`
		req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		req := httptest.NewRequest(http.MethodGet, "/records/not-a-uuid", nil)
		req.SetPathValue("id", "not-a-uuid")
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when record does not exist", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		id := "11111111-1111-1111-1111-111111111111"
		req := httptest.NewRequest(http.MethodGet, "/records/"+id, nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "record not found" {
			t.Errorf("expected 'record not found', got %s", resp["error"])
		}
	})
}

func TestHandler_HandleList(t *testing.T) {
	t.Run("returns a page of records", func(t *testing.T) {
		store := newFakeStore()
		handler := newTestHandler(store)

		create := httptest.NewRequest(http.MethodPost, "/records",
			strings.NewReader(`{"artist":"a","album":"b","price":1,"qty":1,"format":"VINYL","category":"ROCK"}`))
		handler.HandleCreate(httptest.NewRecorder(), create)

		req := httptest.NewRequest(http.MethodGet, "/records?page=1&limit=20", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var page domain.Page[domain.Record]
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if page.Total != 1 || len(page.Data) != 1 {
			t.Errorf("expected 1 record, got total=%d len=%d", page.Total, len(page.Data))
		}
		if page.Page != 1 || page.PageSize != 20 {
			t.Errorf("unexpected pagination: page=%d size=%d", page.Page, page.PageSize)
		}
	})

	t.Run("returns 400 on unknown format filter", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		req := httptest.NewRequest(http.MethodGet, "/records?format=BETAMAX", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown category filter", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		req := httptest.NewRequest(http.MethodGet, "/records?category=POLKA", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleUpdate(t *testing.T) {
	t.Run("patches a record", func(t *testing.T) {
		store := newFakeStore()
		handler := newTestHandler(store)

		create := httptest.NewRequest(http.MethodPost, "/records",
			strings.NewReader(`{"artist":"a","album":"b","price":20,"qty":5,"format":"VINYL","category":"ROCK"}`))
		createRec := httptest.NewRecorder()
		handler.HandleCreate(createRec, create)

		var created domain.Record
		if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to decode create response: %v", err)
		}

		req := httptest.NewRequest(http.MethodPut, "/records/"+created.ID, strings.NewReader(`{"price":30}`))
		req.SetPathValue("id", created.ID)
		rec := httptest.NewRecorder()

		handler.HandleUpdate(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var updated domain.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if updated.Price != 30 {
			t.Errorf("expected price 30, got %d", updated.Price)
		}
		if updated.Quantity != 5 {
			t.Errorf("expected qty 5 untouched, got %d", updated.Quantity)
		}
	})

	t.Run("returns 404 when record does not exist", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		id := "11111111-1111-1111-1111-111111111111"
		req := httptest.NewRequest(http.MethodPut, "/records/"+id, strings.NewReader(`{"price":30}`))
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()

		handler.HandleUpdate(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleDelete(t *testing.T) {
	t.Run("deletes a record", func(t *testing.T) {
		store := newFakeStore()
		handler := newTestHandler(store)

		create := httptest.NewRequest(http.MethodPost, "/records",
			strings.NewReader(`{"artist":"a","album":"b","price":1,"qty":1,"format":"VINYL","category":"ROCK"}`))
		createRec := httptest.NewRecorder()
		handler.HandleCreate(createRec, create)

		var created domain.Record
		if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to decode create response: %v", err)
		}

		req := httptest.NewRequest(http.MethodDelete, "/records/"+created.ID, nil)
		req.SetPathValue("id", created.ID)
		rec := httptest.NewRecorder()

		handler.HandleDelete(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", rec.Code)
		}
		if len(store.records) != 0 {
			t.Errorf("expected record removed, %d remain", len(store.records))
		}
	})

	t.Run("returns 404 when record does not exist", func(t *testing.T) {
		handler := newTestHandler(newFakeStore())

		id := "11111111-1111-1111-1111-111111111111"
		req := httptest.NewRequest(http.MethodDelete, "/records/"+id, nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()

		handler.HandleDelete(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}
