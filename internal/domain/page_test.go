package domain

import "testing"

var testSortFields = map[string]bool{"created": true, "price": true}

func TestPageRequest_Normalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		req := PageRequest{}.Normalize(testSortFields)

		if req.Page != 1 {
			t.Errorf("expected page 1, got %d", req.Page)
		}
		if req.PageSize != DefaultPageSize {
			t.Errorf("expected page size %d, got %d", DefaultPageSize, req.PageSize)
		}
		if req.SortBy != "created" {
			t.Errorf("expected sort by created, got %s", req.SortBy)
		}
		if req.SortDir != SortDesc {
			t.Errorf("expected desc, got %s", req.SortDir)
		}
	})

	t.Run("caps page size", func(t *testing.T) {
		req := PageRequest{PageSize: 500}.Normalize(testSortFields)

		if req.PageSize != MaxPageSize {
			t.Errorf("expected page size %d, got %d", MaxPageSize, req.PageSize)
		}
	})

	t.Run("rejects unknown sort field", func(t *testing.T) {
		req := PageRequest{SortBy: "qty; DROP TABLE records"}.Normalize(testSortFields)

		if req.SortBy != "created" {
			t.Errorf("expected fallback to created, got %s", req.SortBy)
		}
	})

	t.Run("keeps allowed sort field and asc direction", func(t *testing.T) {
		req := PageRequest{SortBy: "price", SortDir: SortAsc}.Normalize(testSortFields)

		if req.SortBy != "price" {
			t.Errorf("expected price, got %s", req.SortBy)
		}
		if req.SortDir != SortAsc {
			t.Errorf("expected asc, got %s", req.SortDir)
		}
	})
}

func TestPageRequest_Offset(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 20}

	if got := req.Offset(); got != 40 {
		t.Errorf("expected offset 40, got %d", got)
	}
}

func TestNewPage(t *testing.T) {
	req := PageRequest{Page: 1, PageSize: 20}

	t.Run("total pages is ceiling of total over page size", func(t *testing.T) {
		page := NewPage([]int{1, 2, 3}, 41, req)

		if page.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", page.TotalPages)
		}
		if page.Total != 41 {
			t.Errorf("expected total 41, got %d", page.Total)
		}
	})

	t.Run("exact multiple", func(t *testing.T) {
		page := NewPage([]int{}, 40, req)

		if page.TotalPages != 2 {
			t.Errorf("expected 2 total pages, got %d", page.TotalPages)
		}
	})

	t.Run("empty result has zero pages and non-nil data", func(t *testing.T) {
		page := NewPage[int](nil, 0, req)

		if page.TotalPages != 0 {
			t.Errorf("expected 0 total pages, got %d", page.TotalPages)
		}
		if page.Data == nil {
			t.Error("expected non-nil data slice")
		}
	})
}
