package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/filmdex/filmdex/internal/repository"
)

// EnsureGenres seeds the genre taxonomy if the table is empty. Like the movie
// guard it is duplicate-tolerant, so a racing second instance is harmless.
func (i *Importer) EnsureGenres(ctx context.Context) error {
	count, err := i.repo.Genres.Count(ctx)
	if err != nil {
		return fmt.Errorf("check genre count: %w", err)
	}
	if count > 0 {
		return nil
	}

	genres, err := i.catalog.FetchGenres(ctx)
	if err != nil {
		return fmt.Errorf("fetch genres: %w", err)
	}
	if len(genres) == 0 {
		i.logger.Warn("no genres returned by upstream")
		return nil
	}

	params := make([]repository.GenreInsertParams, 0, len(genres))
	for _, g := range genres {
		params = append(params, repository.GenreInsertParams{TmdbID: g.ID, Name: g.Name})
	}

	inserted, err := i.repo.Genres.BulkInsert(ctx, params)
	if err != nil {
		return fmt.Errorf("insert genres: %w", err)
	}
	i.logger.Info("genres seeded", zap.Int("inserted", inserted))
	return nil
}
