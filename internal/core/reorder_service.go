package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Cache is a byte-value TTL cache for derived reports. Get returns (nil, nil)
// on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ReorderItem is one catalog entry whose stock has fallen to or below its
// reorder level. For lenses the quantity is the sum over all powers.
type ReorderItem struct {
	Kind         string `json:"kind"` // "lens" or "product"
	ID           int    `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}

// ReorderReport lists everything a store should restock.
type ReorderReport struct {
	StoreID     int           `json:"store_id"`
	Items       []ReorderItem `json:"items"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ReorderService builds the low-stock report, cached per store.
type ReorderService interface {
	// GetReorderReport returns the cached report if fresh, otherwise rebuilds
	// it from the inventory tables.
	GetReorderReport(ctx context.Context, storeID int) (*ReorderReport, error)
}

const reorderCacheTTL = 5 * time.Minute

type reorderService struct {
	pool  *pgxpool.Pool
	cache Cache
}

// NewReorderService constructs a ReorderService backed by PostgreSQL with the
// given report cache.
func NewReorderService(pool *pgxpool.Pool, cache Cache) ReorderService {
	return &reorderService{pool: pool, cache: cache}
}

func (s *reorderService) GetReorderReport(ctx context.Context, storeID int) (*ReorderReport, error) {
	key := fmt.Sprintf("reorder:%d", storeID)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
		var report ReorderReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
		// Unparseable cache entry: drop it and rebuild.
		_ = s.cache.Delete(ctx, key)
	}

	report := &ReorderReport{StoreID: storeID, GeneratedAt: time.Now()}

	// Lenses: reorder level applies to total pieces across all powers.
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.code, l.name, COALESCE(SUM(lp.quantity), 0) AS total, l.reorder_level
		FROM lenses l
		LEFT JOIN lens_powers lp ON lp.lens_id = l.id
		WHERE l.store_id = $1 AND l.is_active = true AND l.reorder_level > 0
		GROUP BY l.id, l.code, l.name, l.reorder_level
		HAVING COALESCE(SUM(lp.quantity), 0) <= l.reorder_level
		ORDER BY l.code`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query lens reorder levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := ReorderItem{Kind: "lens"}
		if err := rows.Scan(&item.ID, &item.Code, &item.Name, &item.Quantity, &item.ReorderLevel); err != nil {
			return nil, fmt.Errorf("scan lens reorder row: %w", err)
		}
		report.Items = append(report.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prodRows, err := s.pool.Query(ctx, `
		SELECT id, code, name, quantity, reorder_level
		FROM products
		WHERE store_id = $1 AND is_active = true AND reorder_level > 0 AND quantity <= reorder_level
		ORDER BY code`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query product reorder levels: %w", err)
	}
	defer prodRows.Close()

	for prodRows.Next() {
		item := ReorderItem{Kind: "product"}
		if err := prodRows.Scan(&item.ID, &item.Code, &item.Name, &item.Quantity, &item.ReorderLevel); err != nil {
			return nil, fmt.Errorf("scan product reorder row: %w", err)
		}
		report.Items = append(report.Items, item)
	}
	if err := prodRows.Err(); err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(report); err == nil {
		_ = s.cache.Set(ctx, key, payload, reorderCacheTTL)
	}
	return report, nil
}
