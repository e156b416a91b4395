package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vrp-dispatch-service/internal/platform/obs"
)

// PairKm is one directed cached distance.
type PairKm struct {
	From, To string
	Km       float64
}

// SQLMatrixCache is a SQL-backed cache for pairwise driving distances.
type SQLMatrixCache struct {
	DB *sql.DB
}

func NewSQLMatrixCache(db *sql.DB) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db}
}

// GetAmong fetches every cached directed pair among the given locations.
func (s *SQLMatrixCache) GetAmong(
	ctx context.Context,
	locations []string,
) (_ map[[2]string]float64, err error) {
	defer obs.Time(ctx, "matrix.cache.GetAmong")(&err)

	if s.DB == nil {
		return nil, errors.New("matrix cache: db is nil")
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(locations))
	for _, l := range locations {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		uniq = append(uniq, l)
	}

	if len(uniq) == 0 {
		return map[[2]string]float64{}, nil
	}

	q := `
	SELECT origin, destination, distance_km
	FROM matrix_cache
	WHERE origin = ANY($1::text[])
		AND destination = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[[2]string]float64, len(uniq)*len(uniq))
	for rows.Next() {
		var from, to string
		var km float64
		if err := rows.Scan(&from, &to, &km); err != nil {
			return nil, fmt.Errorf("get matrix cache: scan rows: %w", err)
		}
		out[[2]string{from, to}] = km
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get matrix cache: row iteration: %w", err)
	}

	return out, nil
}

// PutMany stores directed pair distances, overwriting stale entries.
func (s *SQLMatrixCache) PutMany(ctx context.Context, pairs []PairKm) error {
	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}

	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO matrix_cache (origin, destination, distance_km)
	VALUES ($1, $2, $3)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = EXCLUDED.distance_km;
	`)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		if strings.TrimSpace(p.From) == "" || strings.TrimSpace(p.To) == "" {
			return fmt.Errorf("insert matrix cache: empty location key")
		}
		if _, err := stmt.ExecContext(ctx, p.From, p.To, p.Km); err != nil {
			return fmt.Errorf("insert matrix cache %q -> %q: %w", p.From, p.To, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert matrix cache commit: %w", err)
	}

	return nil
}
