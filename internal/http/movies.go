package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/filmdex/filmdex/internal/auth"
	"github.com/filmdex/filmdex/internal/domain"
	"github.com/filmdex/filmdex/internal/repository"
)

type rateMovieRequest struct {
	MovieID int64   `json:"movieId" validate:"required"`
	Rating  int32   `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty"`
}

type movieResponse struct {
	MovieID     int64                  `json:"movieId"`
	Title       string                 `json:"title"`
	Overview    string                 `json:"overview"`
	ReleaseDate *string                `json:"release_date"`
	Genres      []int32                `json:"genres"`
	AvgRating   float64                `json:"avgRating"`
	Ratings     []ratingSummaryPayload `json:"ratings"`
}

type ratingSummaryPayload struct {
	Rating  int32   `json:"rating"`
	Comment *string `json:"comment"`
}

type genrePayload struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

type rateMovieResult struct {
	MovieID int64   `json:"movieId"`
	Rating  int32   `json:"rating"`
	Comment *string `json:"comment"`
}

type ratingDetailPayload struct {
	ID       string  `json:"id"`
	Rating   int32   `json:"rating"`
	Comment  *string `json:"comment"`
	Username string  `json:"username"`
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.repo.Genres.List(r.Context())
	if err != nil {
		s.logger.Error("list genres error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve genres")
		return
	}

	payload := make([]genrePayload, 0, len(genres))
	for _, g := range genres {
		payload = append(payload, genrePayload{ID: g.TmdbID, Name: g.Name})
	}
	s.respondJSON(w, http.StatusOK, envelope{Message: "Genres retrieved successfully", Data: payload})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	movies, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.logger.Error("list movies error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch movies")
		return
	}

	payload, err := s.attachRatings(r, movies)
	if err != nil {
		s.logger.Error("fetch rating summaries error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch movies")
		return
	}
	s.respondJSON(w, http.StatusOK, envelope{Message: "Movies fetched successfully", Data: payload})
}

// buildMovieFilters parses pagination and filter query parameters. Page and
// limit default to 1 and 10; no upper bound is applied to limit.
func buildMovieFilters(query url.Values) (repository.MovieListFilters, error) {
	filters := repository.MovieListFilters{Page: 1, Limit: 10}

	if val := strings.TrimSpace(query.Get("page")); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page < 1 {
			return filters, fmt.Errorf("page must be a positive integer")
		}
		filters.Page = page
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 1 {
			return filters, fmt.Errorf("limit must be a positive integer")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("search")); val != "" {
		filters.Search = &val
	}
	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		genre, err := strconv.ParseInt(val, 10, 32)
		if err != nil {
			return filters, fmt.Errorf("genre must be an integer")
		}
		genreID := int32(genre)
		filters.GenreID = &genreID
	}
	if val := strings.TrimSpace(query.Get("year")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil || year < 1000 || year > 9999 {
			return filters, fmt.Errorf("year must be a 4-digit year")
		}
		filters.Year = &year
	}
	return filters, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "movieId")
	movieID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "movieId must be an integer")
		return
	}

	movie, err := s.repo.Movies.GetByTmdbID(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Movie with ID %d not found", movieID))
			return
		}
		s.logger.Error("get movie error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch movie")
		return
	}

	payload, err := s.attachRatings(r, []domain.Movie{movie})
	if err != nil {
		s.logger.Error("fetch rating summaries error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch movie")
		return
	}
	s.respondJSON(w, http.StatusOK, envelope{Message: "Movie fetched successfully", Data: payload[0]})
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "Invalid or missing JWT token")
		return
	}

	var req rateMovieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	movie, err := s.repo.Movies.GetByTmdbID(r.Context(), req.MovieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "movie not found")
			return
		}
		s.logger.Error("fetch movie for rating failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to process rating")
		return
	}

	_, inserted, err := s.repo.Ratings.Upsert(r.Context(), repository.RatingUpsertParams{
		UserID:  claims.Subject,
		MovieID: movie.ID,
		Score:   req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		s.logger.Error("upsert rating error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to process rating")
		return
	}

	// A failed recompute only leaves the cached mean stale; log and continue.
	if _, err := s.repo.Movies.RecomputeAvgRating(r.Context(), movie.ID); err != nil {
		s.logger.Error("recompute average rating failed",
			zap.Int64("movie_id", movie.TmdbID),
			zap.Error(err))
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, envelope{
		Message: "Movie rated successfully",
		Data: rateMovieResult{
			MovieID: movie.TmdbID,
			Rating:  req.Rating,
			Comment: req.Comment,
		},
	})
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := s.repo.Ratings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Rating with ID %s not found", id))
			return
		}
		s.logger.Error("get rating error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch rating")
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		Message: "Rating fetched successfully",
		Data: ratingDetailPayload{
			ID:       detail.ID,
			Rating:   detail.Score,
			Comment:  detail.Comment,
			Username: detail.Username,
		},
	})
}

// attachRatings joins the page's rating summaries in one query and converts
// movies to their wire shape.
func (s *Server) attachRatings(r *http.Request, movies []domain.Movie) ([]movieResponse, error) {
	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	summaries, err := s.repo.Ratings.ForMovies(r.Context(), ids)
	if err != nil {
		return nil, err
	}

	payload := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		payload = append(payload, toMovieResponse(m, summaries[m.ID]))
	}
	return payload, nil
}

func toMovieResponse(movie domain.Movie, summaries []domain.RatingSummary) movieResponse {
	resp := movieResponse{
		MovieID:   movie.TmdbID,
		Title:     movie.Title,
		Overview:  movie.Overview,
		Genres:    movie.GenreIDs,
		AvgRating: movie.AvgRating,
		Ratings:   make([]ratingSummaryPayload, 0, len(summaries)),
	}
	if resp.Genres == nil {
		resp.Genres = []int32{}
	}
	if movie.ReleaseDate != nil {
		formatted := movie.ReleaseDate.Format("2006-01-02")
		resp.ReleaseDate = &formatted
	}
	for _, sum := range summaries {
		resp.Ratings = append(resp.Ratings, ratingSummaryPayload{Rating: sum.Score, Comment: sum.Comment})
	}
	return resp
}
