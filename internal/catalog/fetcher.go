package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/partsdesk/partpricer/internal/models"
)

// searchPath is the catalog's single search endpoint. There is no JSON API;
// every query is a form-encoded POST answered with HTML.
const searchPath = "/cgi-bin/search.cgi"

// Form field names understood by the catalog.
const (
	formYear        = "userDate"
	formModel       = "userModel"
	formPart        = "userPart"
	formLocation    = "userLocation"
	formSort        = "userPreference"
	formZip         = "userZip"
	formPage        = "userPage"
	formInterchange = "userInterchange"
	formDate2       = "userDate2"
	formSearchMode  = "userSearch"
	formSchema      = "dbModel"
	formVIN         = "vinSearch"
	formIntSelect   = "userIntSelect"
)

const (
	locationAll = "All States"
	sortByPrice = "price"
	// schemaToken is the catalog's fixed schema-version marker, required
	// once an interchange variant is bound.
	schemaToken = "car-part"
)

// Fetcher issues paginated catalog queries and detects result page counts.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *slog.Logger
}

func NewFetcher(client *http.Client, baseURL, userAgent string, logger *slog.Logger) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger.With("component", "catalog_fetcher"),
	}
}

// SearchURL returns the full search endpoint URL.
func (f *Fetcher) SearchURL() string {
	return f.baseURL + searchPath
}

// FetchPage issues one paginated search and returns the raw markup plus the
// detected total page count. Listings are left for the caller to parse.
func (f *Fetcher) FetchPage(ctx context.Context, query models.PartQuery, page int) (*models.PageFetchResult, error) {
	form := f.buildForm(query, page)
	endpoint := f.SearchURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Debug("fetching search page", "page", page, "part", query.Part)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &models.NetworkError{Page: page, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.NetworkError{
			Page: page,
			URL:  endpoint,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.NetworkError{Page: page, URL: endpoint, Err: err}
	}
	if len(body) == 0 {
		return nil, &models.NetworkError{
			Page: page,
			URL:  endpoint,
			Err:  fmt.Errorf("empty response body"),
		}
	}

	markup := string(body)
	return &models.PageFetchResult{
		RawMarkup:          markup,
		DetectedTotalPages: DetectTotalPages(markup),
	}, nil
}

func (f *Fetcher) buildForm(query models.PartQuery, page int) url.Values {
	bound := query.VariantValue != ""

	form := url.Values{}
	form.Set(formYear, strconv.Itoa(query.Year))
	form.Set(formModel, query.MakeModel())
	form.Set(formPart, query.Part)
	form.Set(formLocation, locationAll)
	form.Set(formSort, sortByPrice)
	form.Set(formZip, query.PostalCode)
	form.Set(formPage, strconv.Itoa(page))

	if bound {
		form.Set(formInterchange, query.VariantValue)
		form.Set(formDate2, strconv.Itoa(query.Year))
		form.Set(formSearchMode, "int")
		form.Set(formSchema, schemaToken)
		form.Set(formVIN, "")
		form.Set(formIntSelect, query.VariantValue)
	} else {
		form.Set(formInterchange, "None")
		form.Set(formDate2, "0")
		form.Set(formSearchMode, "non")
	}
	return form
}
