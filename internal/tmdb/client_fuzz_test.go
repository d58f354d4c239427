package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func FuzzFetchPopularDecoding(f *testing.F) {
	f.Add(`{"page":1,"results":[{"id":27205,"title":"Inception","overview":"","release_date":"2010-07-15","genre_ids":[28,878]}]}`)
	f.Add(`{"success":false,"status_message":"Invalid page: Pages start at 1 and max at 500."}`)
	f.Add(`{"page":1,"results":[]}`)
	f.Add(`{`)
	f.Add(``)
	f.Add(`null`)
	f.Add(`{"results":[{"id":"not-a-number"}]}`)

	f.Fuzz(func(t *testing.T, body string) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}))
		defer server.Close()

		client, err := NewHTTPClient(server.URL, "test-key", 2*time.Second, nil)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}

		movies, err := client.FetchPopular(context.Background(), 1)
		if err != nil {
			return
		}

		var probe struct {
			StatusMessage string `json:"status_message"`
		}
		if json.Unmarshal([]byte(body), &probe) == nil &&
			strings.Contains(probe.StatusMessage, "Invalid page") && movies != nil {
			t.Fatalf("out-of-range page should terminate with a nil slice, got %v", movies)
		}
	})
}
