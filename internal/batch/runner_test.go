package batch

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partpricer/internal/database"
	"github.com/partsdesk/partpricer/internal/models"
)

type fakeScraper struct {
	outcomes map[string]models.ScrapeOutcome
	calls    []string
}

func (f *fakeScraper) ScrapePricing(ctx context.Context, query models.PartQuery) models.ScrapeOutcome {
	f.calls = append(f.calls, query.Part)
	if outcome, ok := f.outcomes[query.Part]; ok {
		return outcome
	}
	metrics := models.PricingResult{AvgPrice: 100, TotalListings: 1, TotalPages: 1}
	return models.ScrapeOutcome{Success: true, Metrics: &metrics}
}

type fakeItems struct {
	due     []*database.Item
	dueErr  error
	checked map[string]string
}

func (f *fakeItems) DueItems(ctx context.Context, maxAge time.Duration, limit int) ([]*database.Item, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	if limit < len(f.due) {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeItems) MarkChecked(ctx context.Context, id, variantValue string) error {
	if f.checked == nil {
		f.checked = map[string]string{}
	}
	f.checked[id] = variantValue
	return nil
}

type fakeSink struct {
	published []string
	err       error
}

func (f *fakeSink) PublishPricingRecorded(ctx context.Context, itemID string, query models.PartQuery, metrics models.PricingResult) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, itemID)
	return nil
}

func item(id, part string) *database.Item {
	return &database.Item{ID: id, Year: 2015, Make: "Honda", Model: "CR-V", Part: part, PostalCode: "45402"}
}

func newTestRunner(scraper Scraper, items ItemSource, sink ResultSink) *Runner {
	return NewRunner(scraper, items, sink, time.Millisecond, 24*time.Hour, 10, slog.Default())
}

func TestRunProcessesDueItemsInOrder(t *testing.T) {
	scraper := &fakeScraper{}
	items := &fakeItems{due: []*database.Item{item("a", "Engine"), item("b", "Hood"), item("c", "Door")}}
	sink := &fakeSink{}

	stats, err := newTestRunner(scraper, items, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{Processed: 3, Succeeded: 3}, stats)
	assert.Equal(t, []string{"Engine", "Hood", "Door"}, scraper.calls)
	assert.Equal(t, []string{"a", "b", "c"}, sink.published)
	assert.Len(t, items.checked, 3)
}

func TestRunContinuesPastFailedItems(t *testing.T) {
	scraper := &fakeScraper{outcomes: map[string]models.ScrapeOutcome{
		"Hood": {Success: false, Error: "page 1 fetch failed"},
	}}
	items := &fakeItems{due: []*database.Item{item("a", "Engine"), item("b", "Hood"), item("c", "Door")}}
	sink := &fakeSink{}

	stats, err := newTestRunner(scraper, items, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{Processed: 3, Succeeded: 2, Failed: 1}, stats)
	assert.Equal(t, []string{"a", "c"}, sink.published)
	assert.NotContains(t, items.checked, "b")
}

func TestRunSkipsPublishWhenNoListings(t *testing.T) {
	empty := models.PricingResult{TotalPages: 1}
	scraper := &fakeScraper{outcomes: map[string]models.ScrapeOutcome{
		"Engine": {Success: true, Metrics: &empty, Message: "no listings found"},
	}}
	items := &fakeItems{due: []*database.Item{item("a", "Engine")}}
	sink := &fakeSink{}

	stats, err := newTestRunner(scraper, items, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{Processed: 1, Succeeded: 1}, stats)
	assert.Empty(t, sink.published)
	assert.Contains(t, items.checked, "a")
}

func TestRunRecordsResolvedVariant(t *testing.T) {
	metrics := models.PricingResult{AvgPrice: 50, TotalListings: 2, TotalPages: 1}
	scraper := &fakeScraper{outcomes: map[string]models.ScrapeOutcome{
		"Engine": {Success: true, Metrics: &metrics, ResolvedVariant: "INT-24L"},
	}}
	items := &fakeItems{due: []*database.Item{item("a", "Engine")}}

	_, err := newTestRunner(scraper, items, &fakeSink{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "INT-24L", items.checked["a"])
}

func TestRunPropagatesItemQueryFailure(t *testing.T) {
	items := &fakeItems{dueErr: fmt.Errorf("connection refused")}

	_, err := newTestRunner(&fakeScraper{}, items, &fakeSink{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnCancellation(t *testing.T) {
	scraper := &fakeScraper{}
	items := &fakeItems{due: []*database.Item{item("a", "Engine"), item("b", "Hood")}}

	runner := NewRunner(scraper, items, &fakeSink{}, time.Hour, 24*time.Hour, 10, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stats, err := runner.Run(ctx)
	require.Error(t, err)
	assert.LessOrEqual(t, stats.Processed, 1)
}
