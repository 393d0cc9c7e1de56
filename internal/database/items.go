package database

import (
	"context"
	"fmt"
	"time"

	"github.com/partsdesk/partpricer/internal/models"
)

// Item is one inventory record whose market price gets re-checked on a
// schedule. The pricing history itself lives downstream; this table only
// carries the query inputs and scheduling bookkeeping.
type Item struct {
	ID            string
	Year          int
	Make          string
	Model         string
	Part          string
	VariantValue  string
	PostalCode    string
	LastCheckedAt *time.Time
}

// Query builds the catalog query for this item. A variant remembered from a
// previous resolution is carried over so the scrape skips detection.
func (i *Item) Query() models.PartQuery {
	return models.PartQuery{
		Year:         i.Year,
		Make:         i.Make,
		Model:        i.Model,
		Part:         i.Part,
		VariantValue: i.VariantValue,
		PostalCode:   i.PostalCode,
	}
}

// ItemStore reads and updates the scheduled price-check items.
type ItemStore struct {
	db *DB
}

func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

// DueItems returns up to limit items whose last check is older than maxAge,
// oldest first. Never-checked items come before everything else.
func (s *ItemStore) DueItems(ctx context.Context, maxAge time.Duration, limit int) ([]*Item, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT id, year, make, model, part, COALESCE(variant_value, ''), postal_code, last_checked_at
		FROM pricing_items
		WHERE last_checked_at IS NULL OR last_checked_at < $1
		ORDER BY last_checked_at ASC NULLS FIRST
		LIMIT $2`,
		time.Now().Add(-maxAge), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.Year, &item.Make, &item.Model,
			&item.Part, &item.VariantValue, &item.PostalCode, &item.LastCheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkChecked stamps an item after a scrape attempt, storing the variant the
// resolver landed on so later runs skip detection.
func (s *ItemStore) MarkChecked(ctx context.Context, id, variantValue string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE pricing_items
		SET last_checked_at = NOW(), variant_value = NULLIF($2, '')
		WHERE id = $1`,
		id, variantValue)
	if err != nil {
		return fmt.Errorf("failed to mark item checked: %w", err)
	}
	return nil
}
