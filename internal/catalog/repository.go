package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

// sortColumns whitelists API sort fields against real columns so user
// input never reaches the ORDER BY clause directly.
var sortColumns = map[string]string{
	"created":  "created",
	"artist":   "artist",
	"album":    "album",
	"price":    "price",
	"category": "category",
	"format":   "format",
}

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = "id, artist, album, price, qty, format, category, mbid, tracklist, created, last_modified"

func (r *RecordRepository) Insert(ctx context.Context, rec *domain.Record) error {
	rec.ID = uuid.New().String()

	tracklist, err := json.Marshal(rec.Tracklist)
	if err != nil {
		return fmt.Errorf("marshal tracklist: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO records (id, artist, album, price, qty, format, category, mbid, tracklist, created, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.Artist, rec.Album, rec.Price, rec.Quantity, rec.Format, rec.Category,
		nullString(rec.MBID), tracklist, rec.Created, rec.LastModified)
	if err != nil {
		return mapConflict(err)
	}

	return nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE id = $1
	`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepository) Update(ctx context.Context, rec *domain.Record) error {
	tracklist, err := json.Marshal(rec.Tracklist)
	if err != nil {
		return fmt.Errorf("marshal tracklist: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET artist = $2, album = $3, price = $4, qty = $5, format = $6,
		    category = $7, mbid = $8, tracklist = $9, last_modified = $10
		WHERE id = $1
	`, rec.ID, rec.Artist, rec.Album, rec.Price, rec.Quantity, rec.Format,
		rec.Category, nullString(rec.MBID), tracklist, rec.LastModified)
	if err != nil {
		return mapConflict(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *RecordRepository) Find(ctx context.Context, f Filter, req domain.PageRequest) ([]domain.Record, error) {
	where, args := f.whereClause()

	query := fmt.Sprintf(`
		SELECT %s
		FROM records%s
		ORDER BY %s %s
		OFFSET $%d LIMIT $%d
	`, recordColumns, where, sortColumns[req.SortBy], sortDirection(req.SortDir), len(args)+1, len(args)+2)
	args = append(args, req.Offset(), req.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *RecordRepository) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.whereClause()

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`+where, args...).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// DecrementStock subtracts quantity from a record's stock as one
// conditional UPDATE. The qty >= $2 guard makes the decrement safe
// under concurrent orders: two requests can never both pass a check
// against the same stale quantity.
func (r *RecordRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET qty = qty - $2, last_modified = NOW()
		WHERE id = $1 AND qty >= $2
	`, id, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM records WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInsufficientStock
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var mbid sql.NullString
	var tracklist []byte

	err := row.Scan(&rec.ID, &rec.Artist, &rec.Album, &rec.Price, &rec.Quantity,
		&rec.Format, &rec.Category, &mbid, &tracklist, &rec.Created, &rec.LastModified)
	if err != nil {
		return nil, err
	}

	rec.MBID = mbid.String
	if err := json.Unmarshal(tracklist, &rec.Tracklist); err != nil {
		return nil, fmt.Errorf("unmarshal tracklist: %w", err)
	}

	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// mapConflict translates a Postgres unique violation into the domain
// conflict error; (artist, album, format) is the only unique index.
func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: a record with this artist, album and format already exists", domain.ErrConflict)
	}
	return err
}

func sortDirection(dir domain.SortDirection) string {
	if dir == domain.SortAsc {
		return "ASC"
	}
	return "DESC"
}
