package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marcboeker/go-duckdb/v2"

	"github.com/n0roo/vibespinner/internal/catalog"
	"github.com/n0roo/vibespinner/internal/schema"
)

// AnalyticsDB wraps DuckDB for catalog statistics
type AnalyticsDB struct {
	db   *sql.DB
	path string
}

// Config holds analytics configuration
type Config struct {
	DBPath    string // DuckDB file path
	CachePath string // JSON cache path for item exports
}

// TagCount is usage of a single tag across the item pool
type TagCount struct {
	Tag   string `json:"tag"`
	Group string `json:"group,omitempty"` // empty for stale tags no group offers
	Count int    `json:"count"`
}

// CreatorCount is the number of items added by one user
type CreatorCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// itemRow is the JSON cache record shape
type itemRow struct {
	Name          string    `json:"name"`
	Tags          []string  `json:"tags"`
	CreatedByName string    `json:"created_by_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// New creates an AnalyticsDB instance
func New(cfg Config) (*AnalyticsDB, error) {
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create analytics directory: %w", err)
	}

	if cfg.CachePath != "" {
		if err := os.MkdirAll(cfg.CachePath, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	connector, err := duckdb.NewConnector(cfg.DBPath, nil)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	return &AnalyticsDB{db: sql.OpenDB(connector), path: cfg.DBPath}, nil
}

// Close closes the database connection
func (a *AnalyticsDB) Close() error {
	return a.db.Close()
}

// ExportItems writes the item cache to the JSON file DuckDB queries
func ExportItems(cachePath string, items []catalog.Item) (string, error) {
	rows := make([]itemRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, itemRow{
			Name:          item.Name,
			Tags:          item.Tags,
			CreatedByName: item.CreatedByName,
			CreatedAt:     item.CreatedAt,
		})
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode item cache: %w", err)
	}

	path := filepath.Join(cachePath, "items.json")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("write item cache: %w", err)
	}
	return path, nil
}

// TagUsage counts how often each tag appears across items, most used
// first. Group attribution comes from the schema; tags no group offers
// anymore are still reported, with an empty group.
func (a *AnalyticsDB) TagUsage(ctx context.Context, itemsPath string, s *schema.Schema) ([]TagCount, error) {
	sqlQuery := fmt.Sprintf(`
		SELECT tag, COUNT(*) AS uses
		FROM (SELECT UNNEST(tags) AS tag FROM read_json_auto('%s'))
		GROUP BY tag
		ORDER BY uses DESC, tag
	`, itemsPath)

	rows, err := a.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("tag usage query: %w", err)
	}
	defer rows.Close()

	var results []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			continue
		}
		tc.Group, _ = s.GroupOf(tc.Tag)
		results = append(results, tc)
	}
	return results, nil
}

// CreatorStats counts items per creator, most active first
func (a *AnalyticsDB) CreatorStats(ctx context.Context, itemsPath string) ([]CreatorCount, error) {
	sqlQuery := fmt.Sprintf(`
		SELECT coalesce(created_by_name, 'unknown') AS name, COUNT(*) AS items
		FROM read_json_auto('%s')
		GROUP BY coalesce(created_by_name, 'unknown')
		ORDER BY items DESC, name
	`, itemsPath)

	rows, err := a.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("creator stats query: %w", err)
	}
	defer rows.Close()

	var results []CreatorCount
	for rows.Next() {
		var cc CreatorCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			continue
		}
		results = append(results, cc)
	}
	return results, nil
}
