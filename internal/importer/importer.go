package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/filmdex/filmdex/internal/repository"
	"github.com/filmdex/filmdex/internal/tmdb"
)

const (
	defaultMaxPages    = 500
	defaultTargetCount = 9677
	defaultPageDelay   = 250 * time.Millisecond
	defaultRetryWait   = time.Second
	maxFetchAttempts   = 3
)

// Options tunes the import loop. Zero values fall back to the catalog
// defaults; tests shrink the waits.
type Options struct {
	MaxPages    int
	TargetCount int64
	PageDelay   time.Duration
	RetryWait   time.Duration
	Logger      *zap.Logger
}

// Importer drives the catalog client across pages and mirrors the results
// into the local store. It also owns the one-shot startup guards that decide
// whether any import work is needed.
type Importer struct {
	catalog     tmdb.Client
	repo        *repository.Repository
	logger      *zap.Logger
	maxPages    int
	targetCount int64
	retryWait   time.Duration
	pageLimiter *rate.Limiter
}

// New constructs an Importer.
func New(catalog tmdb.Client, repo *repository.Repository, opts Options) *Importer {
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.TargetCount <= 0 {
		opts.TargetCount = defaultTargetCount
	}
	if opts.PageDelay <= 0 {
		opts.PageDelay = defaultPageDelay
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Importer{
		catalog:     catalog,
		repo:        repo,
		logger:      opts.Logger,
		maxPages:    opts.MaxPages,
		targetCount: opts.TargetCount,
		retryWait:   opts.RetryWait,
		pageLimiter: rate.NewLimiter(rate.Every(opts.PageDelay), 1),
	}
}

// Initialize runs the startup guards once: movie population, genre seeding,
// and default users. Every failure is logged and swallowed so the API can
// start serving regardless of upstream availability.
func (i *Importer) Initialize(ctx context.Context) {
	if err := i.EnsurePopulated(ctx); err != nil {
		i.logger.Error("movie population failed", zap.Error(err))
	}
	if err := i.EnsureGenres(ctx); err != nil {
		i.logger.Error("genre seeding failed", zap.Error(err))
	}
	if err := i.EnsureUsers(ctx); err != nil {
		i.logger.Error("user seeding failed", zap.Error(err))
	}
}

// EnsurePopulated imports the catalog unless the store already holds the
// target number of movies, making restarts idempotent.
func (i *Importer) EnsurePopulated(ctx context.Context) error {
	count, err := i.repo.Movies.Count(ctx)
	if err != nil {
		return fmt.Errorf("check movie count: %w", err)
	}
	if count >= i.targetCount {
		i.logger.Info("movies already populated, skipping import", zap.Int64("count", count))
		return nil
	}

	i.logger.Info("movies not fully populated, starting import",
		zap.Int64("count", count),
		zap.Int64("target", i.targetCount))

	total, err := i.Run(ctx)
	if err != nil {
		// The import is truncated, not rolled back; whatever landed stays.
		return fmt.Errorf("import stopped after %d movies: %w", total, err)
	}
	return nil
}

// Run walks the catalog page by page and bulk-inserts each page with
// duplicate tolerance. It returns the number of movies actually inserted.
// Any persistent failure stops the loop; pages already written are kept.
func (i *Importer) Run(ctx context.Context) (int, error) {
	total := 0
	for page := 1; page <= i.maxPages; page++ {
		movies, err := i.fetchPageWithRetry(ctx, page)
		if err != nil {
			return total, fmt.Errorf("page %d: %w", page, err)
		}
		if len(movies) == 0 {
			i.logger.Info("no more movies to fetch, stopping", zap.Int("page", page))
			break
		}

		params := prepareForInsert(movies)
		if len(params) == 0 {
			i.logger.Info("no valid movies on page", zap.Int("page", page))
			continue
		}

		inserted, err := i.repo.Movies.BulkInsert(ctx, params)
		if err != nil {
			return total, fmt.Errorf("page %d: %w", page, err)
		}
		total += inserted
		i.logger.Info("page imported",
			zap.Int("page", page),
			zap.Int("fetched", len(movies)),
			zap.Int("inserted", inserted))

		// Pace requests to stay under the upstream rate limit.
		if err := i.pageLimiter.Wait(ctx); err != nil {
			return total, err
		}
	}

	i.logger.Info("movie population completed", zap.Int("total_inserted", total))
	return total, nil
}

// fetchPageWithRetry fetches one page, retrying up to three attempts. A rate
// limit response waits 2^attempt base units before the next try; other
// errors retry immediately and surface after the final attempt.
func (i *Importer) fetchPageWithRetry(ctx context.Context, page int) ([]tmdb.RawMovie, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		movies, err := i.catalog.FetchPopular(ctx, page)
		if err == nil {
			return movies, nil
		}
		lastErr = err

		if errors.Is(err, tmdb.ErrRateLimited) {
			delay := time.Duration(1<<attempt) * i.retryWait
			i.logger.Warn("rate limit hit, backing off",
				zap.Int("page", page),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		i.logger.Warn("fetch failed",
			zap.Int("page", page),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", maxFetchAttempts, lastErr)
}

// prepareForInsert normalizes raw catalog records, dropping any that lack an
// id or title.
func prepareForInsert(movies []tmdb.RawMovie) []repository.MovieInsertParams {
	params := make([]repository.MovieInsertParams, 0, len(movies))
	for _, m := range movies {
		if m.ID == 0 || m.Title == "" {
			continue
		}
		p := repository.MovieInsertParams{
			TmdbID:   m.ID,
			Title:    m.Title,
			Overview: m.Overview,
			GenreIDs: m.GenreIDs,
		}
		if t, err := time.Parse("2006-01-02", m.ReleaseDate); err == nil {
			p.ReleaseDate = &t
		}
		params = append(params, p)
	}
	return params
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
