package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/partsdesk/partpricer/internal/models"
)

// UnknownDealer is the source used when a result row carries no dealer link.
const UnknownDealer = "Unknown Dealer"

const minRowCells = 5

// CatalogParser extracts priced listings from the catalog's result tables.
// Rows that cannot be parsed are dropped, never fatal.
type CatalogParser struct {
	pricePattern    *regexp.Regexp
	locationPattern *regexp.Regexp
	gradePattern    *regexp.Regexp
}

func NewCatalogParser() *CatalogParser {
	return &CatalogParser{
		pricePattern:    regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?)`),
		locationPattern: regexp.MustCompile(`^\s*([A-Za-z][A-Za-z .'-]*),\s*([A-Z]{2})\s*$`),
		gradePattern:    regexp.MustCompile(`^[A-D]$`),
	}
}

// ParseListings extracts all priced result rows from one page of markup.
func (p *CatalogParser) ParseListings(html string) []models.Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var listings []models.Listing
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		if listing, ok := p.parseRow(row); ok {
			listings = append(listings, listing)
		}
	})
	return listings
}

func (p *CatalogParser) parseRow(row *goquery.Selection) (models.Listing, bool) {
	cells := row.Find("td")
	if cells.Length() < minRowCells {
		return models.Listing{}, false
	}

	title := strings.TrimSpace(cells.First().Text())
	if title == "" || strings.Contains(strings.ToLower(title), "description") {
		return models.Listing{}, false
	}

	price, ok := p.extractPrice(cells)
	if !ok {
		return models.Listing{}, false
	}

	listing := models.Listing{
		Title:    title,
		Price:    price,
		Source:   p.extractSource(row),
		Location: p.extractLocation(cells),
		Grade:    p.extractGrade(cells),
	}
	return listing, true
}

func (p *CatalogParser) extractPrice(cells *goquery.Selection) (float64, bool) {
	price := 0.0
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		text := cell.Text()
		if !strings.Contains(text, "$") {
			return true
		}
		match := p.pricePattern.FindString(text)
		if match == "" {
			return true
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil || value == 0 {
			return true
		}
		price = value
		return false
	})
	return price, price > 0
}

func (p *CatalogParser) extractLocation(cells *goquery.Selection) string {
	location := ""
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		match := p.locationPattern.FindStringSubmatch(cell.Text())
		if match == nil {
			return true
		}
		location = strings.TrimSpace(match[1]) + ", " + match[2]
		return false
	})
	return location
}

func (p *CatalogParser) extractSource(row *goquery.Selection) string {
	source := strings.TrimSpace(row.Find("a").First().Text())
	if source == "" {
		return UnknownDealer
	}
	return source
}

func (p *CatalogParser) extractGrade(cells *goquery.Selection) string {
	grade := ""
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		text := strings.TrimSpace(cell.Text())
		if !p.gradePattern.MatchString(text) {
			return true
		}
		grade = text
		return false
	})
	return grade
}
