package pricing

// PlanPages maps a detected page count to the additional pages worth fetching.
// Page 1 is always fetched before planning, so it is never included.
//
// Results arrive sorted ascending by price, which shapes the policy: small
// result sets are fetched whole, mid-size sets skip the last page (low-price
// outliers), and large sets are sampled at fixed cost near the top, middle
// and bottom of the range.
func PlanPages(totalPages int) []int {
	switch {
	case totalPages <= 1:
		return []int{}
	case totalPages <= 3:
		pages := make([]int, 0, totalPages-1)
		for p := 2; p <= totalPages; p++ {
			pages = append(pages, p)
		}
		return pages
	case totalPages <= 10:
		pages := make([]int, 0, totalPages-2)
		for p := 2; p <= totalPages-1; p++ {
			pages = append(pages, p)
		}
		return pages
	default:
		mid := (totalPages + 1) / 2
		return []int{2, mid, mid + 1, totalPages - 2, totalPages - 1}
	}
}
