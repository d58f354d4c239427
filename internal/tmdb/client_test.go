package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, "test-key", 2*time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client, srv
}

func TestFetchPopular(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api key not forwarded")
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("page = %s, want 2", r.URL.Query().Get("page"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "page": 2,
            "results": [
                {"id": 27205, "title": "Inception", "overview": "dreams", "release_date": "2010-07-16", "genre_ids": [28, 878]},
                {"id": 157336, "title": "Interstellar", "overview": "", "release_date": "", "genre_ids": []}
            ]
        }`))
	})

	movies, err := client.FetchPopular(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch popular: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("len = %d, want 2", len(movies))
	}
	if movies[0].ID != 27205 || movies[0].Title != "Inception" {
		t.Fatalf("unexpected first record: %+v", movies[0])
	}
	if len(movies[0].GenreIDs) != 2 {
		t.Fatalf("genre ids not decoded: %+v", movies[0].GenreIDs)
	}
}

func TestFetchPopularInvalidPageTerminates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_message": "Invalid page: Pages start at 1 and max at 500."}`))
	})

	movies, err := client.FetchPopular(context.Background(), 501)
	if err != nil {
		t.Fatalf("invalid page must not be an error, got %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("invalid page must yield an empty result, got %d", len(movies))
	}
}

func TestFetchPopularRateLimited(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchPopular(context.Background(), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestFetchPopularUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchPopular(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected error for upstream 500")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Fatalf("a 500 must not classify as rate limited")
	}
}

func TestFetchGenres(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/genre/movie/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"genres": [{"id": 28, "name": "Action"}, {"id": 35, "name": "Comedy"}]}`))
	})

	genres, err := client.FetchGenres(context.Background())
	if err != nil {
		t.Fatalf("fetch genres: %v", err)
	}
	if len(genres) != 2 || genres[0].Name != "Action" {
		t.Fatalf("unexpected genres: %+v", genres)
	}
}

func TestFetchGenresRateLimited(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := client.FetchGenres(context.Background()); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}
