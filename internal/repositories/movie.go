package repositories

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/shared"
)

var movieColumns = []string{
	"id", "movie_poster", "movie_name", "movie_director", "release_year", "movie_rating", "movie_plot",
}

// MovieFilter narrows [MovieRepository.List]. Zero fields are ignored.
type MovieFilter struct {
	Director string
	Year     int
	Limit    uint64
}

// MovieRepository persists [models.Movie] rows.
type MovieRepository struct {
	db DBTX
}

// NewMovieRepository creates a new [MovieRepository] with the given database handle
func NewMovieRepository(db DBTX) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create validates and inserts a new movie, setting its ID from the database.
//
// A name collision is reported as [shared.ErrDuplicate].
func (r *MovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	if err := movie.Validate(); err != nil {
		return fmt.Errorf("invalid movie: %w", err)
	}

	query, args, err := builder.Insert("movies").
		Columns(movieColumns[1:]...).
		Values(movie.Poster, movie.Name, movie.Director, movie.ReleaseYear, movie.Rating, movie.Plot).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build movie insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert movie %q: %w", movie.Name, shared.ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read movie id: %w", err)
	}
	movie.ID = id

	return nil
}

// Get retrieves a movie by ID
func (r *MovieRepository) Get(ctx context.Context, id int64) (*models.Movie, error) {
	var movie models.Movie
	query := `SELECT ` + strings.Join(movieColumns, ", ") + ` FROM movies WHERE id = ?`
	if err := getOne(ctx, r.db, &movie, fmt.Sprintf("movie %d", id), query, id); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetByName retrieves a movie by name, ignoring case.
func (r *MovieRepository) GetByName(ctx context.Context, name string) (*models.Movie, error) {
	var movie models.Movie
	query := `SELECT ` + strings.Join(movieColumns, ", ") + ` FROM movies WHERE lower(movie_name) = lower(?) ORDER BY id LIMIT 1`
	if err := getOne(ctx, r.db, &movie, fmt.Sprintf("movie %q", name), query, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	return &movie, nil
}

// List retrieves movies ordered by ID, narrowed by filter.
func (r *MovieRepository) List(ctx context.Context, filter MovieFilter) ([]models.Movie, error) {
	b := builder.Select(movieColumns...).From("movies").OrderBy("id ASC")

	if filter.Director != "" {
		b = b.Where(sq.Expr("lower(movie_director) = lower(?)", filter.Director))
	}
	if filter.Year > 0 {
		b = b.Where(sq.Eq{"release_year": filter.Year})
	}
	if filter.Limit > 0 {
		b = b.Limit(filter.Limit)
	}

	movies := []models.Movie{}
	if err := selectBuilt(ctx, r.db, &movies, "movies", b); err != nil {
		return nil, err
	}
	return movies, nil
}
