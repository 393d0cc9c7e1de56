package models

import (
	"fmt"
	"strings"
	"time"
)

// PartQuery describes one vehicle+part lookup against the salvage catalog.
// An empty VariantValue means "resolve automatically".
type PartQuery struct {
	Year         int    `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Part         string `json:"part"`
	VariantValue string `json:"variant_value,omitempty"`
	PostalCode   string `json:"postal_code"`
}

// MakeModel returns the combined make+model string the catalog form expects.
func (q PartQuery) MakeModel() string {
	return strings.TrimSpace(q.Make + " " + q.Model)
}

func (q PartQuery) Validate() []string {
	var errs []string
	if q.Year < 1900 || q.Year > time.Now().Year()+1 {
		errs = append(errs, fmt.Sprintf("year %d out of range", q.Year))
	}
	if q.Make == "" {
		errs = append(errs, "make is required")
	}
	if q.Model == "" {
		errs = append(errs, "model is required")
	}
	if q.Part == "" {
		errs = append(errs, "part is required")
	}
	if q.PostalCode == "" {
		errs = append(errs, "postal code is required")
	}
	return errs
}

// VariantOption is one disambiguating sub-choice offered by the catalog,
// e.g. an engine displacement. Value is an opaque catalog token.
type VariantOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Listing is one priced result row. Location may be empty; Grade is a
// single letter A-D or empty.
type Listing struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Source   string  `json:"source"`
	Location string  `json:"location"`
	Grade    string  `json:"grade"`
}

// PageFetchResult is the outcome of fetching one search page.
type PageFetchResult struct {
	RawMarkup          string
	DetectedTotalPages int
	Listings           []Listing
}

// PricingResult is a sample-based estimate over the pages actually fetched,
// never a full catalog census: TotalListings counts only parsed rows from
// fetched pages and is <= the true catalog size whenever TotalPages exceeds
// the pages sampled.
type PricingResult struct {
	AvgPrice      float64 `json:"avg_price"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	StdDev        float64 `json:"std_dev"`
	TotalListings int     `json:"total_listings"`
	TotalPages    int     `json:"total_pages"`
}

// ScrapeOutcome is the terminal state of one scrapePricing invocation.
// ResolvedVariant reports which variant the query ran under so callers may
// persist it; the engine itself forgets it when the call returns.
type ScrapeOutcome struct {
	Success         bool           `json:"success"`
	Metrics         *PricingResult `json:"metrics,omitempty"`
	ResolvedVariant string         `json:"resolved_variant,omitempty"`
	Message         string         `json:"message,omitempty"`
	Error           string         `json:"error,omitempty"`
}
