package domain

import "sort"

// ComparableListing is one reference-market record. The comparable store is
// read-only from this core's point of view.
type ComparableListing struct {
	Make  string  `json:"make"`
	Model string  `json:"model"`
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

// ComparableSet is the filtered view of reference listings used to
// sanity-check one prediction.
type ComparableSet struct {
	Listings []ComparableListing
}

func (s ComparableSet) Count() int { return len(s.Listings) }

// MedianPrice returns the comparable median, or 0 for an empty set.
func (s ComparableSet) MedianPrice() float64 {
	n := len(s.Listings)
	if n == 0 {
		return 0
	}
	prices := make([]float64, n)
	for i, l := range s.Listings {
		prices[i] = l.Price
	}
	sort.Float64s(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}
