package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/partsdesk/partpricer/internal/models"
)

// variantControlSelector matches the radio controls the catalog renders when
// a query is ambiguous across interchange variants.
const variantControlSelector = `input[type="radio"][name="userInterchange"]`

// VariantSelector picks which offered variant to bind when the caller did
// not supply one.
type VariantSelector interface {
	Select(options []models.VariantOption) models.VariantOption
}

// FirstOffered binds the first variant the catalog lists.
type FirstOffered struct{}

func (FirstOffered) Select(options []models.VariantOption) models.VariantOption {
	return options[0]
}

// VariantResolver detects ambiguous queries and binds a variant before the
// real search runs.
type VariantResolver struct {
	fetcher  PageFetcher
	selector VariantSelector
	logger   *slog.Logger
}

func NewVariantResolver(fetcher PageFetcher, selector VariantSelector, logger *slog.Logger) *VariantResolver {
	if selector == nil {
		selector = FirstOffered{}
	}
	return &VariantResolver{
		fetcher:  fetcher,
		selector: selector,
		logger:   logger.With("component", "variant_resolver"),
	}
}

// Resolve returns the variant value bound for this query, along with the
// page-1 result the rest of the scrape should start from.
//
// A query that already carries a variant is fetched once, bound. Otherwise
// the unbound response is checked for variant controls; when the catalog
// offers several, one is selected and the query re-issued with it bound.
// No controls (or a single one) falls through to the unbound result.
func (r *VariantResolver) Resolve(ctx context.Context, query models.PartQuery) (string, *models.PageFetchResult, error) {
	if query.VariantValue != "" {
		result, err := r.fetcher.FetchPage(ctx, query, 1)
		if err != nil {
			return "", nil, err
		}
		return query.VariantValue, result, nil
	}

	result, err := r.fetcher.FetchPage(ctx, query, 1)
	if err != nil {
		return "", nil, err
	}

	options := extractVariantOptions(result.RawMarkup)
	if len(options) < 2 {
		return "", result, nil
	}

	chosen := r.selector.Select(options)
	r.logger.Info("auto-selected variant",
		"part", query.Part,
		"variant", chosen.Value,
		"label", chosen.Label,
		"offered", len(options))

	query.VariantValue = chosen.Value
	bound, err := r.fetcher.FetchPage(ctx, query, 1)
	if err != nil {
		return "", nil, fmt.Errorf("failed to re-query with variant %s: %w", chosen.Value, err)
	}
	return chosen.Value, bound, nil
}

// ListVariants returns every variant the catalog offers for an unbound
// query, for callers that want to choose one themselves.
func (r *VariantResolver) ListVariants(ctx context.Context, query models.PartQuery) ([]models.VariantOption, error) {
	query.VariantValue = ""
	result, err := r.fetcher.FetchPage(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	return extractVariantOptions(result.RawMarkup), nil
}

func extractVariantOptions(markup string) []models.VariantOption {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var options []models.VariantOption
	doc.Find(variantControlSelector).Each(func(i int, control *goquery.Selection) {
		value, ok := control.Attr("value")
		if !ok || value == "" {
			return
		}
		options = append(options, models.VariantOption{
			Value: value,
			Label: extractVariantLabel(doc, control, value),
		})
	})
	return options
}

// extractVariantLabel recovers a human-readable label for one control:
// the raw text trailing the control up to the next tag, then an associated
// label element, then the raw value itself.
func extractVariantLabel(doc *goquery.Document, control *goquery.Selection, value string) string {
	if label := trailingText(control); label != "" {
		return label
	}
	if id, ok := control.Attr("id"); ok && id != "" {
		if label := strings.TrimSpace(doc.Find(`label[for="` + id + `"]`).First().Text()); label != "" {
			return label
		}
	}
	return value
}

func trailingText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	var text strings.Builder
	for sib := sel.Nodes[0].NextSibling; sib != nil && sib.Type == html.TextNode; sib = sib.NextSibling {
		text.WriteString(sib.Data)
	}
	return strings.TrimSpace(text.String())
}
