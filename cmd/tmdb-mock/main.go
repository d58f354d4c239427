// Command tmdb-mock serves a fixture-backed imitation of the TMDB endpoints
// the importer consumes, for local runs without an API key.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
)

type mockData struct {
	Pages  [][]json.RawMessage `json:"pages"`
	Genres []json.RawMessage   `json:"genres"`
}

func main() {
	var (
		port = flag.String("port", "9099", "port to listen on")
		data = flag.String("data", "mock-tmdb.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload mockData
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		w.Header().Set("Content-Type", "application/json")
		if page > len(payload.Pages) {
			// Mirrors the real catalog's out-of-range page response.
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status_message": "Invalid page: Pages start at 1 and max at 500.",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"page":    page,
			"results": payload.Pages[page-1],
		})
	})
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"genres": payload.Genres,
		})
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s (%d pages, %d genres)", addr, len(payload.Pages), len(payload.Genres))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
