package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partpricer/internal/models"
	"github.com/partsdesk/partpricer/internal/scraper"
)

type fixedFetcher struct {
	result *models.PageFetchResult
	err    error
}

func (f *fixedFetcher) FetchPage(ctx context.Context, query models.PartQuery, page int) (*models.PageFetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestHandlers(fetcher scraper.PageFetcher) *Handlers {
	service := scraper.NewService(fetcher, slog.Default(), &scraper.Options{PageDelay: time.Millisecond})
	return NewHandlers(service, slog.Default())
}

const onePageOfListings = `<body>Page 1 of 1<table>
	<tr><td>Engine Assembly</td><td>2015 Honda CR-V</td><td>$500.00</td><td><a>Dealer</a></td><td>A</td></tr>
	<tr><td>Engine Assembly</td><td>2015 Honda CR-V</td><td>$700.00</td><td><a>Dealer</a></td><td>B</td></tr>
</table></body>`

func validBody() string {
	return `{"year":2015,"make":"Honda","model":"CR-V","part":"Engine Assembly","postal_code":"45402","variant_value":"INT-1"}`
}

func TestGetPricing(t *testing.T) {
	handlers := newTestHandlers(&fixedFetcher{
		result: &models.PageFetchResult{RawMarkup: onePageOfListings, DetectedTotalPages: 1},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing", strings.NewReader(validBody()))
	rec := httptest.NewRecorder()
	handlers.GetPricing(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var outcome models.ScrapeOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.True(t, outcome.Success)
	require.NotNil(t, outcome.Metrics)
	assert.Equal(t, 600.00, outcome.Metrics.AvgPrice)
	assert.Equal(t, 2, outcome.Metrics.TotalListings)
}

func TestGetPricingValidation(t *testing.T) {
	handlers := newTestHandlers(&fixedFetcher{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing fields", `{"year":2015}`},
		{"year out of range", `{"year":1850,"make":"Honda","model":"CR-V","part":"Hood","postal_code":"45402"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handlers.GetPricing(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetVariants(t *testing.T) {
	markup := `<body>
		<input type="radio" name="userInterchange" value="INT-A"> 2.4L
		<input type="radio" name="userInterchange" value="INT-B"> 2.0L turbo
	</body>`
	handlers := newTestHandlers(&fixedFetcher{
		result: &models.PageFetchResult{RawMarkup: markup, DetectedTotalPages: 1},
	})

	body := `{"year":2015,"make":"Honda","model":"CR-V","part":"Engine Assembly","postal_code":"45402"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/variants", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handlers.GetVariants(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp VariantsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Variants, 2)
	assert.Equal(t, "INT-A", resp.Variants[0].Value)
	assert.Equal(t, "2.4L", resp.Variants[0].Label)
}

func TestGetVariantsFetchFailure(t *testing.T) {
	handlers := newTestHandlers(&fixedFetcher{
		err: &models.NetworkError{Page: 1, Err: context.DeadlineExceeded},
	})

	body := `{"year":2015,"make":"Honda","model":"CR-V","part":"Engine Assembly","postal_code":"45402"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/variants", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handlers.GetVariants(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp VariantsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestHealth(t *testing.T) {
	handlers := newTestHandlers(&fixedFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handlers.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
