package catalog

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/record-store-api/internal/cache"
	"github.com/joao-fontenele/record-store-api/internal/domain"
)

// sortFields is the set of fields a catalog listing may be sorted by.
var sortFields = map[string]bool{
	"created":  true,
	"artist":   true,
	"album":    true,
	"price":    true,
	"category": true,
	"format":   true,
}

// RecordStore is the persistence contract the service depends on.
// GetByID returns (nil, nil) when no record exists.
type RecordStore interface {
	Insert(ctx context.Context, rec *domain.Record) error
	GetByID(ctx context.Context, id string) (*domain.Record, error)
	Update(ctx context.Context, rec *domain.Record) error
	Delete(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, f Filter, req domain.PageRequest) ([]domain.Record, error)
	Count(ctx context.Context, f Filter) (int, error)
}

// TracklistFetcher resolves an external MusicBrainz ID to a tracklist.
// Implementations absorb all failures and return an empty list.
type TracklistFetcher interface {
	FetchTracklist(ctx context.Context, mbid string) []domain.Track
}

// Service owns catalog reads and writes. Reads go through the query
// cache; every successful write clears it, so a stale page can never
// outlive a change to the data it was built from.
type Service struct {
	store    RecordStore
	cache    cache.Cache
	enricher TracklistFetcher
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store RecordStore, c cache.Cache, enricher TracklistFetcher, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &Service{
		store:    store,
		cache:    c,
		enricher: enricher,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	Artist   string
	Album    string
	Price    int64
	Quantity int
	Format   string
	Category string
	MBID     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Record, error) {
	if in.Artist == "" {
		return nil, fmt.Errorf("%w: artist is required", domain.ErrInvalidInput)
	}
	if in.Album == "" {
		return nil, fmt.Errorf("%w: album is required", domain.ErrInvalidInput)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: qty must not be negative", domain.ErrInvalidInput)
	}
	format, err := domain.ParseFormat(in.Format)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	tracklist := []domain.Track{}
	if in.MBID != "" {
		tracklist = s.enricher.FetchTracklist(ctx, in.MBID)
	}

	now := s.now()
	rec := &domain.Record{
		Artist:       in.Artist,
		Album:        in.Album,
		Price:        in.Price,
		Quantity:     in.Quantity,
		Format:       format,
		Category:     category,
		MBID:         in.MBID,
		Tracklist:    tracklist,
		Created:      now,
		LastModified: now,
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	s.cache.Clear(ctx)
	s.logger.Info("record created", "record_id", rec.ID, "artist", rec.Artist, "album", rec.Album)
	return rec, nil
}

// UpdateInput is a partial patch; nil fields are left untouched.
type UpdateInput struct {
	Artist   *string
	Album    *string
	Price    *int64
	Quantity *int
	Format   *string
	Category *string
	MBID     *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, id)
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}

	if in.Artist != nil {
		if *in.Artist == "" {
			return nil, fmt.Errorf("%w: artist is required", domain.ErrInvalidInput)
		}
		rec.Artist = *in.Artist
	}
	if in.Album != nil {
		if *in.Album == "" {
			return nil, fmt.Errorf("%w: album is required", domain.ErrInvalidInput)
		}
		rec.Album = *in.Album
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
		}
		rec.Price = *in.Price
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, fmt.Errorf("%w: qty must not be negative", domain.ErrInvalidInput)
		}
		rec.Quantity = *in.Quantity
	}
	if in.Format != nil {
		format, err := domain.ParseFormat(*in.Format)
		if err != nil {
			return nil, err
		}
		rec.Format = format
	}
	if in.Category != nil {
		category, err := domain.ParseCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		rec.Category = category
	}
	if in.MBID != nil && *in.MBID != rec.MBID {
		rec.MBID = *in.MBID
		// A new MBID replaces the whole tracklist; the old one is not
		// merged. Clearing the MBID keeps the last fetched tracklist.
		if rec.MBID != "" {
			rec.Tracklist = s.enricher.FetchTracklist(ctx, rec.MBID)
		}
	}

	rec.LastModified = s.now()

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.cache.Clear(ctx)
	s.logger.Info("record updated", "record_id", rec.ID)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidID, id)
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.cache.Clear(ctx)
	s.logger.Info("record deleted", "record_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, id)
	}

	key := "record:" + id
	if cached, ok := s.cache.Get(ctx, key); ok {
		var rec domain.Record
		if err := json.Unmarshal(cached, &rec); err == nil {
			return &rec, nil
		}
		s.logger.Warn("dropping undecodable cache entry", "key", key)
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}

	if data, err := json.Marshal(rec); err == nil {
		s.cache.Set(ctx, key, data, s.cacheTTL)
	}

	return rec, nil
}

func (s *Service) Find(ctx context.Context, f Filter, req domain.PageRequest) (domain.Page[domain.Record], error) {
	req = req.Normalize(sortFields)

	key := findCacheKey(f, req)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var page domain.Page[domain.Record]
		if err := json.Unmarshal(cached, &page); err == nil {
			return page, nil
		}
		s.logger.Warn("dropping undecodable cache entry", "key", key)
	}

	records, err := s.store.Find(ctx, f, req)
	if err != nil {
		return domain.Page[domain.Record]{}, err
	}
	total, err := s.store.Count(ctx, f)
	if err != nil {
		return domain.Page[domain.Record]{}, err
	}

	page := domain.NewPage(records, total, req)

	if data, err := json.Marshal(page); err == nil {
		s.cache.Set(ctx, key, data, s.cacheTTL)
	}

	return page, nil
}

// findCacheKey derives a deterministic cache key from the full set of
// filter and pagination parameters; any difference in either yields a
// distinct key.
func findCacheKey(f Filter, req domain.PageRequest) string {
	raw := fmt.Sprintf("q=%s|artist=%s|album=%s|format=%s|category=%s|page=%d|size=%d|sort=%s|dir=%s",
		f.Query, f.Artist, f.Album, f.Format, f.Category,
		req.Page, req.PageSize, req.SortBy, req.SortDir)
	return fmt.Sprintf("records:%x", sha1.Sum([]byte(raw)))
}
