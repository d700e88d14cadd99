package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staff-sync/core/cache"
	"staff-sync/core/record"
)

// Provider executes the per-scope extraction queries against the ERP
// database and returns generic records. Results go through the
// read-through cache so repeated runs inside the cache TTL skip the
// database entirely.
type Provider struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *zap.Logger
}

// NewProvider creates a provider. The cache may be nil.
func NewProvider(db *gorm.DB, c *cache.Cache, log *zap.Logger) *Provider {
	return &Provider{db: db, cache: c, log: log}
}

// Fetch runs one extraction query and returns its rows as records. Column
// names become record fields; byte slices are converted to strings so
// downstream comparison sees text, not driver internals.
func (p *Provider) Fetch(ctx context.Context, scope, query string) ([]record.Record, error) {
	var cached []record.Record
	if p.cache != nil && p.cache.Get(&cached, "erp_query", scope, query) {
		p.log.Debug("Source records served from cache", zap.String("scope", scope), zap.Int("count", len(cached)))
		return cached, nil
	}

	rows, err := p.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to execute extraction query for scope %s: %w", scope, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var records []record.Record
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := make(record.Record, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				rec[col] = string(v)
			default:
				rec[col] = v
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	p.log.Info("Source records loaded", zap.String("scope", scope), zap.Int("count", len(records)))

	if p.cache != nil {
		if err := p.cache.Set(records, "erp_query", scope, query); err != nil {
			p.log.Warn("Failed to cache source records", zap.String("scope", scope), zap.Error(err))
		}
	}
	return records, nil
}
