package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
)

// PostgresSource snapshots the catalog tables once. Rows are ordered by their
// position column so declaration order survives the round trip.
type PostgresSource struct {
	DB *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{DB: db}
}

// OpenPostgres opens a pgx-backed *sql.DB and checks connectivity.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}

	err = withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Dataset(ctx context.Context) (Dataset, error) {
	var ds Dataset

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		cats, err := s.categories(ctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		vids, err := s.videos(ctx)
		if err != nil {
			return fmt.Errorf("videos: %w", err)
		}
		ds = Dataset{Categories: cats, Videos: vids}
		return nil
	})
	if err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func (s *PostgresSource) categories(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT name
		FROM categories
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 8)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *PostgresSource) videos(ctx context.Context) ([]Video, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, id_is_numeric, title, category, duration_minutes, thumbnail_url, description
		FROM videos
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Video, 0, 64)
	for rows.Next() {
		var (
			v       Video
			id      string
			numeric bool
		)
		if err := rows.Scan(&id, &numeric, &v.Title, &v.Category, &v.DurationMinutes, &v.ThumbnailURL, &v.Description); err != nil {
			return nil, err
		}
		if v.ID, err = videoIDFromText(id, numeric); err != nil {
			return nil, fmt.Errorf("video %q: %w", id, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
