package catalog

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var pageOfPattern = regexp.MustCompile(`Page\s+(\d+)\s+of\s+(\d+)`)

// pageCountStrategy inspects one page and reports a total page count if it
// can find one. Strategies are tried in order until one succeeds.
type pageCountStrategy func(body string, doc *goquery.Document) (int, bool)

var pageCountStrategies = []pageCountStrategy{
	pageCountFromPageOfText,
	pageCountFromPageParams,
	pageCountFromNumericLinks,
}

// DetectTotalPages derives the catalog's total page count for a result set
// from one page of markup. Defaults to 1 when no strategy succeeds.
func DetectTotalPages(body string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return 1
	}
	for _, strategy := range pageCountStrategies {
		if total, ok := strategy(body, doc); ok {
			return total
		}
	}
	return 1
}

// "Page 2 of 14" somewhere in the body.
func pageCountFromPageOfText(body string, _ *goquery.Document) (int, bool) {
	match := pageOfPattern.FindStringSubmatch(body)
	if match == nil {
		return 0, false
	}
	total, err := strconv.Atoi(match[2])
	if err != nil || total < 1 {
		return 0, false
	}
	return total, true
}

// Highest page-number query parameter across all links.
func pageCountFromPageParams(_ string, doc *goquery.Document) (int, bool) {
	max := 0
	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		page, err := strconv.Atoi(u.Query().Get(formPage))
		if err != nil {
			return
		}
		if page > max {
			max = page
		}
	})
	return max, max > 0
}

// Highest plain-integer link text whose target is the search endpoint.
func pageCountFromNumericLinks(_ string, doc *goquery.Document) (int, bool) {
	max := 0
	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.Contains(href, searchPath) {
			return
		}
		page, err := strconv.Atoi(strings.TrimSpace(link.Text()))
		if err != nil {
			return
		}
		if page > max {
			max = page
		}
	})
	return max, max > 0
}
