package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type recordRequest struct {
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Price    int64  `json:"price"`
	Quantity int    `json:"qty"`
	Format   string `json:"format"`
	Category string `json:"category"`
	MBID     string `json:"mbid"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.Create(r.Context(), CreateInput{
		Artist:   req.Artist,
		Album:    req.Album,
		Price:    req.Price,
		Quantity: req.Quantity,
		Format:   req.Format,
		Category: req.Category,
		MBID:     req.MBID,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to create record")
		return
	}

	h.writeJSON(w, http.StatusCreated, rec)
}

type updateRecordRequest struct {
	Artist   *string `json:"artist"`
	Album    *string `json:"album"`
	Price    *int64  `json:"price"`
	Quantity *int    `json:"qty"`
	Format   *string `json:"format"`
	Category *string `json:"category"`
	MBID     *string `json:"mbid"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.Update(r.Context(), id, UpdateInput{
		Artist:   req.Artist,
		Album:    req.Album,
		Price:    req.Price,
		Quantity: req.Quantity,
		Format:   req.Format,
		Category: req.Category,
		MBID:     req.MBID,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to update record")
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "failed to delete record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get record")
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := Filter{
		Query:  query.Get("q"),
		Artist: query.Get("artist"),
		Album:  query.Get("album"),
	}
	if v := query.Get("format"); v != "" {
		format, err := domain.ParseFormat(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Format = format
	}
	if v := query.Get("category"); v != "" {
		category, err := domain.ParseCategory(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Category = category
	}

	page, err := h.service.Find(r.Context(), filter, pageRequest(r))
	if err != nil {
		h.writeServiceError(w, err, "failed to list records")
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

// pageRequest extracts pagination parameters shared by list endpoints.
// Out-of-range values are normalized by the service.
func pageRequest(r *http.Request) domain.PageRequest {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("limit"))

	return domain.PageRequest{
		Page:     page,
		PageSize: pageSize,
		SortBy:   query.Get("sortBy"),
		SortDir:  domain.SortDirection(query.Get("sortOrder")),
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidID), errors.Is(err, domain.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, domain.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
