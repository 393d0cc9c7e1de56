package pricing

import (
	"math"

	"github.com/partsdesk/partpricer/internal/models"
)

// Aggregate reduces parsed listings into summary statistics. Listings without
// a positive price are ignored. StdDev is the population standard deviation
// (divisor N). All monetary outputs are rounded to cents.
func Aggregate(listings []models.Listing, totalPages int) models.PricingResult {
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Price > 0 {
			prices = append(prices, l.Price)
		}
	}

	result := models.PricingResult{
		TotalListings: len(prices),
		TotalPages:    totalPages,
	}
	if len(prices) == 0 {
		return result
	}

	sum := 0.0
	min := prices[0]
	max := prices[0]
	for _, p := range prices {
		sum += p
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	mean := sum / float64(len(prices))

	variance := 0.0
	for _, p := range prices {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(prices))

	result.AvgPrice = roundCents(mean)
	result.MinPrice = roundCents(min)
	result.MaxPrice = roundCents(max)
	result.StdDev = roundCents(math.Sqrt(variance))
	return result
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
