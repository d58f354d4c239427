package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildMovieFilters(f *testing.F) {
	seeds := []string{
		"search=Inception&genre=878&year=2010",
		"page=2&limit=50",
		"year=abc",
		"page=-1",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		filters, err := buildMovieFilters(values)
		if err != nil {
			return
		}
		if filters.Page < 1 || filters.Limit < 1 {
			t.Fatalf("accepted non-positive pagination: %+v", filters)
		}
		if filters.Year != nil && (*filters.Year < 1000 || *filters.Year > 9999) {
			t.Fatalf("accepted out-of-range year: %d", *filters.Year)
		}
	})
}
