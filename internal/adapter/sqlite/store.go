// Package sqlite persists impact sites in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
	CREATE TABLE IF NOT EXISTS impact_sites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		radius_km REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_impact_sites_name ON impact_sites(name);
`

// Store implements domain.SiteStore.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	path   string
}

// Open opens or creates the site database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open site database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize site schema: %w", err)
	}

	logger.Info("site database ready", "path", path)
	return &Store{conn: conn, logger: logger, path: path}, nil
}

// List returns all sites ordered by id.
func (s *Store) List(ctx context.Context) ([]domain.ImpactSite, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, lat, lng, radius_km FROM impact_sites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	sites := []domain.ImpactSite{}
	for rows.Next() {
		var site domain.ImpactSite
		if err := rows.Scan(&site.ID, &site.Name, &site.Lat, &site.Lng, &site.RadiusKm); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

// Create inserts a site and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, site domain.ImpactSite) (domain.ImpactSite, error) {
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO impact_sites (name, lat, lng, radius_km) VALUES (?, ?, ?, ?)`,
		site.Name, site.Lat, site.Lng, site.RadiusKm,
	)
	if err != nil {
		return domain.ImpactSite{}, fmt.Errorf("insert site: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.ImpactSite{}, fmt.Errorf("read site id: %w", err)
	}
	site.ID = id
	return site, nil
}

// Clear deletes every site and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM impact_sites`)
	if err != nil {
		return 0, fmt.Errorf("clear sites: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleared sites: %w", err)
	}
	s.logger.Info("sites cleared", "removed", n)
	return n, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("site database unavailable: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
