package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/partsdesk/partpricer/internal/database"
	"github.com/partsdesk/partpricer/internal/models"
	"github.com/partsdesk/partpricer/internal/ratelimit"
)

// Scraper runs one price-discovery scrape.
type Scraper interface {
	ScrapePricing(ctx context.Context, query models.PartQuery) models.ScrapeOutcome
}

// ItemSource supplies the items due a price check and records completions.
type ItemSource interface {
	DueItems(ctx context.Context, maxAge time.Duration, limit int) ([]*database.Item, error)
	MarkChecked(ctx context.Context, id, variantValue string) error
}

// ResultSink receives each successful pricing result.
type ResultSink interface {
	PublishPricingRecorded(ctx context.Context, itemID string, query models.PartQuery, metrics models.PricingResult) error
}

type Stats struct {
	Processed int
	Succeeded int
	Failed    int
}

// Runner walks the due items strictly one at a time. The inter-item delay
// composes with the per-page delay inside each scrape, so total wall-clock
// time scales with items times pages sampled. A failed item is logged and
// skipped; the run itself only stops on context cancellation.
type Runner struct {
	scraper   Scraper
	items     ItemSource
	sink      ResultSink
	itemDelay time.Duration
	maxAge    time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewRunner(scraper Scraper, items ItemSource, sink ResultSink, itemDelay, maxAge time.Duration, batchSize int, logger *slog.Logger) *Runner {
	return &Runner{
		scraper:   scraper,
		items:     items,
		sink:      sink,
		itemDelay: itemDelay,
		maxAge:    maxAge,
		batchSize: batchSize,
		logger:    logger.With("component", "batch_runner"),
	}
}

func (r *Runner) Run(ctx context.Context) (Stats, error) {
	stats := Stats{}

	items, err := r.items.DueItems(ctx, r.maxAge, r.batchSize)
	if err != nil {
		return stats, err
	}
	r.logger.Info("batch run starting", "due_items", len(items))

	limiter := ratelimit.NewFixedDelayLimiter(r.itemDelay)
	for _, item := range items {
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}

		stats.Processed++
		if r.processItem(ctx, item) {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}

	r.logger.Info("batch run finished",
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed)
	return stats, nil
}

func (r *Runner) processItem(ctx context.Context, item *database.Item) bool {
	query := item.Query()
	outcome := r.scraper.ScrapePricing(ctx, query)
	if !outcome.Success {
		r.logger.Warn("item scrape failed", "item_id", item.ID, "error", outcome.Error)
		return false
	}

	if outcome.Metrics.TotalListings > 0 {
		if err := r.sink.PublishPricingRecorded(ctx, item.ID, query, *outcome.Metrics); err != nil {
			r.logger.Error("failed to publish result", "item_id", item.ID, "error", err)
			return false
		}
	} else {
		r.logger.Info("no listings for item, nothing published", "item_id", item.ID)
	}

	if err := r.items.MarkChecked(ctx, item.ID, outcome.ResolvedVariant); err != nil {
		r.logger.Error("failed to mark item checked", "item_id", item.ID, "error", err)
		return false
	}
	return true
}
