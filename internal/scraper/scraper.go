package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/partsdesk/partpricer/internal/models"
	"github.com/partsdesk/partpricer/internal/parser"
	"github.com/partsdesk/partpricer/internal/pricing"
	"github.com/partsdesk/partpricer/internal/ratelimit"
)

// PageFetcher issues one paginated catalog query.
type PageFetcher interface {
	FetchPage(ctx context.Context, query models.PartQuery, page int) (*models.PageFetchResult, error)
}

type Options struct {
	// PageDelay is the pause before each additional-page fetch. The
	// catalog has no published rate limit; one second has proven safe.
	PageDelay time.Duration
	// Selector decides which variant to bind on ambiguous queries.
	// Defaults to the first offered option.
	Selector VariantSelector
}

// Service runs the end-to-end price-discovery flow: resolve variant, fetch
// page 1, plan additional pages, fetch them sequentially, parse, aggregate.
type Service struct {
	fetcher   PageFetcher
	resolver  *VariantResolver
	parser    *parser.CatalogParser
	pageDelay time.Duration
	logger    *slog.Logger
}

func NewService(fetcher PageFetcher, logger *slog.Logger, opts *Options) *Service {
	if opts == nil {
		opts = &Options{}
	}
	delay := opts.PageDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Service{
		fetcher:   fetcher,
		resolver:  NewVariantResolver(fetcher, opts.Selector, logger),
		parser:    parser.NewCatalogParser(),
		pageDelay: delay,
		logger:    logger.With("component", "scraper"),
	}
}

// ScrapePricing samples the catalog for one vehicle+part query and reduces
// the priced listings into summary statistics. Only a page-1 failure is
// fatal; additional-page failures shrink the sample.
func (s *Service) ScrapePricing(ctx context.Context, query models.PartQuery) models.ScrapeOutcome {
	variant, page1, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		s.logger.Error("initial page fetch failed", "part", query.Part, "error", err)
		return models.ScrapeOutcome{Error: err.Error()}
	}
	query.VariantValue = variant

	totalPages := page1.DetectedTotalPages
	plan := pricing.PlanPages(totalPages)
	s.logger.Info("planned page sample",
		"part", query.Part,
		"total_pages", totalPages,
		"additional_pages", len(plan))

	pages, err := s.fetchPlanned(ctx, query, page1, plan)
	if err != nil {
		return models.ScrapeOutcome{Error: err.Error()}
	}

	listings := s.parseAll(pages)
	metrics := pricing.Aggregate(listings, totalPages)

	outcome := models.ScrapeOutcome{Success: true, Metrics: &metrics, ResolvedVariant: variant}
	if metrics.TotalListings == 0 {
		outcome.Message = "no listings found"
		s.logger.Warn("no listings found", "part", query.Part, "pages_fetched", len(pages))
	}
	return outcome
}

// ListVariants exposes the catalog's disambiguation choices for a query,
// for operator UIs that want to pick one instead of auto-resolving.
func (s *Service) ListVariants(ctx context.Context, query models.PartQuery) ([]models.VariantOption, error) {
	return s.resolver.ListVariants(ctx, query)
}

// fetchPlanned fetches the planned additional pages strictly one at a time,
// pausing before each. Failed pages are logged and skipped. Only context
// cancellation aborts the loop.
func (s *Service) fetchPlanned(ctx context.Context, query models.PartQuery, page1 *models.PageFetchResult, plan []int) ([]*models.PageFetchResult, error) {
	pages := []*models.PageFetchResult{page1}

	// prime the limiter so the first planned fetch also waits the full delay
	limiter := ratelimit.NewFixedDelayLimiter(s.pageDelay)
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	for _, pageNum := range plan {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		result, err := s.fetcher.FetchPage(ctx, query, pageNum)
		if err != nil {
			s.logger.Warn("additional page fetch failed, continuing",
				"page", pageNum, "error", err)
			continue
		}
		pages = append(pages, result)
	}
	return pages, nil
}

// parseAll folds the ordered sequence of fetched pages into one listing
// collection.
func (s *Service) parseAll(pages []*models.PageFetchResult) []models.Listing {
	var listings []models.Listing
	for _, page := range pages {
		page.Listings = s.parser.ParseListings(page.RawMarkup)
		listings = append(listings, page.Listings...)
	}
	return listings
}
