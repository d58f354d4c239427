package httpserver

import (
	"net/url"
	"testing"

	"github.com/filmdex/filmdex/internal/repository"
)

func TestBuildMovieFilters(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantPage  int
		wantLimit int
		wantErr   bool
		check     func(t *testing.T, f repository.MovieListFilters)
	}{
		{
			name:      "defaults",
			query:     url.Values{},
			wantPage:  1,
			wantLimit: 10,
		},
		{
			name:      "explicit page and limit",
			query:     url.Values{"page": {"3"}, "limit": {"25"}},
			wantPage:  3,
			wantLimit: 25,
		},
		{
			name:    "zero page rejected",
			query:   url.Values{"page": {"0"}},
			wantErr: true,
		},
		{
			name:    "negative limit rejected",
			query:   url.Values{"limit": {"-5"}},
			wantErr: true,
		},
		{
			name:    "non-numeric page rejected",
			query:   url.Values{"page": {"abc"}},
			wantErr: true,
		},
		{
			name:      "search trimmed",
			query:     url.Values{"search": {"  inception  "}},
			wantPage:  1,
			wantLimit: 10,
			check: func(t *testing.T, f repository.MovieListFilters) {
				if f.Search == nil || *f.Search != "inception" {
					t.Fatalf("search = %v, want inception", f.Search)
				}
			},
		},
		{
			name:      "blank search ignored",
			query:     url.Values{"search": {"   "}},
			wantPage:  1,
			wantLimit: 10,
			check: func(t *testing.T, f repository.MovieListFilters) {
				if f.Search != nil {
					t.Fatalf("search = %v, want nil", f.Search)
				}
			},
		},
		{
			name:      "genre parsed",
			query:     url.Values{"genre": {"878"}},
			wantPage:  1,
			wantLimit: 10,
			check: func(t *testing.T, f repository.MovieListFilters) {
				if f.GenreID == nil || *f.GenreID != 878 {
					t.Fatalf("genre = %v, want 878", f.GenreID)
				}
			},
		},
		{
			name:    "non-numeric genre rejected",
			query:   url.Values{"genre": {"action"}},
			wantErr: true,
		},
		{
			name:      "year parsed",
			query:     url.Values{"year": {"2014"}},
			wantPage:  1,
			wantLimit: 10,
			check: func(t *testing.T, f repository.MovieListFilters) {
				if f.Year == nil || *f.Year != 2014 {
					t.Fatalf("year = %v, want 2014", f.Year)
				}
			},
		},
		{
			name:    "malformed year rejected",
			query:   url.Values{"year": {"20xx"}},
			wantErr: true,
		},
		{
			name:    "three digit year rejected",
			query:   url.Values{"year": {"999"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := buildMovieFilters(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", filters)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filters.Page != tt.wantPage {
				t.Fatalf("page = %d, want %d", filters.Page, tt.wantPage)
			}
			if filters.Limit != tt.wantLimit {
				t.Fatalf("limit = %d, want %d", filters.Limit, tt.wantLimit)
			}
			if tt.check != nil {
				tt.check(t, filters)
			}
		})
	}
}

func BenchmarkBuildMovieFilters(b *testing.B) {
	query := url.Values{
		"page":   {"3"},
		"limit":  {"25"},
		"search": {"inception"},
		"genre":  {"878"},
		"year":   {"2010"},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := buildMovieFilters(query); err != nil {
			b.Fatal(err)
		}
	}
}
