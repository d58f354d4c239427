package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrRateLimited is returned when the upstream signals HTTP 429. Callers are
// expected to back off and retry.
var ErrRateLimited = errors.New("tmdb: rate limited")

// RawMovie is one record of a popular-movies page as returned by the catalog.
type RawMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int32 `json:"genre_ids"`
}

// RawGenre is one entry of the catalog's genre taxonomy.
type RawGenre struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Client defines the contract for querying the upstream movie catalog.
type Client interface {
	FetchPopular(ctx context.Context, page int) ([]RawMovie, error)
	FetchGenres(ctx context.Context) ([]RawGenre, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient constructs a new HTTP-backed catalog client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

type popularResponse struct {
	Page          int        `json:"page"`
	Results       []RawMovie `json:"results"`
	StatusMessage string     `json:"status_message"`
}

type genreListResponse struct {
	Genres []RawGenre `json:"genres"`
}

// FetchPopular retrieves one page of popular movies. A page the upstream
// reports as out of range yields an empty slice and a nil error; that is the
// pagination termination signal, not a failure.
func (c *HTTPClient) FetchPopular(ctx context.Context, page int) ([]RawMovie, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("page", strconv.Itoa(page))

	var payload popularResponse
	if err := c.get(ctx, "/movie/popular", q, &payload); err != nil {
		return nil, err
	}
	if strings.Contains(payload.StatusMessage, "Invalid page") {
		c.logger.Info("reached invalid page, stopping fetch", zap.Int("page", page))
		return nil, nil
	}
	return payload.Results, nil
}

// FetchGenres retrieves the full genre taxonomy.
func (c *HTTPClient) FetchGenres(ctx context.Context) ([]RawGenre, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)

	var payload genreListResponse
	if err := c.get(ctx, "/genre/movie/list", q, &payload); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	rel := &url.URL{Path: path, RawQuery: query.Encode()}
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode tmdb response: %w", err)
		}
		return nil
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		c.logger.Warn("unexpected upstream status",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path))
		return fmt.Errorf("tmdb: upstream returned %d", resp.StatusCode)
	}
}
