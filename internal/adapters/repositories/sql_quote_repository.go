package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/db"
	"multidrop-route-service/internal/platform/obs"
	"multidrop-route-service/internal/ports"
)

// SQL-backed implementation of the QuoteRepository port. The full quote is
// stored as a JSON document next to a few indexed columns.
type SQLQuoteRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLQuoteRepository(conn *sql.DB, dialect db.Dialect) *SQLQuoteRepository {
	return &SQLQuoteRepository{DB: conn, Dialect: dialect}
}

func (s *SQLQuoteRepository) SaveQuote(ctx context.Context, q *domain.Quote) (err error) {
	defer obs.Time(ctx, "quotes.SaveQuote")(&err)

	if s.DB == nil {
		return errors.New("sql quote repository: DB is nil")
	}
	if q == nil || q.ID == "" {
		return errors.New("save quote: quote id is required")
	}

	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("save quote %s: encode: %w", q.ID, err)
	}

	query := s.Dialect.Rebind(`
	INSERT INTO quotes (id, created_at, vehicle_type, total_pence, payload)
	VALUES (?, ?, ?, ?, ?);
	`)

	vehicle := ""
	if q.Route != nil {
		vehicle = string(q.Route.VehicleType)
	}

	if _, err := s.DB.ExecContext(ctx, query, q.ID, q.CreatedAt.UTC(), vehicle, q.Totals.Total, string(payload)); err != nil {
		return fmt.Errorf("save quote %s: insert: %w", q.ID, err)
	}
	return nil
}

func (s *SQLQuoteRepository) GetQuote(ctx context.Context, id string) (_ *domain.Quote, err error) {
	defer obs.Time(ctx, "quotes.GetQuote")(&err)

	if s.DB == nil {
		return nil, errors.New("sql quote repository: DB is nil")
	}

	query := s.Dialect.Rebind(`
	SELECT payload
	FROM quotes
	WHERE id = ?;
	`)

	var payload string
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("get quote %s: query: %w", id, err)
	}

	var q domain.Quote
	if err := json.Unmarshal([]byte(payload), &q); err != nil {
		return nil, fmt.Errorf("get quote %s: decode: %w", id, err)
	}
	if q.Route != nil && !q.Route.Optimization.Algorithm.Valid() {
		return nil, fmt.Errorf("get quote %s: decode: unknown algorithm %q", id, q.Route.Optimization.Algorithm)
	}
	return &q, nil
}
