package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/shared"
)

// UserMovieRepository persists [models.UserMovie] associations.
type UserMovieRepository struct {
	db DBTX
}

// NewUserMovieRepository creates a new [UserMovieRepository] with the given database handle
func NewUserMovieRepository(db DBTX) *UserMovieRepository {
	return &UserMovieRepository{db: db}
}

// Create validates and inserts an association.
//
// An existing pair is reported as [shared.ErrDuplicate]; a missing user or movie as [shared.ErrForeignKey].
func (r *UserMovieRepository) Create(ctx context.Context, um *models.UserMovie) error {
	if err := um.Validate(); err != nil {
		return fmt.Errorf("invalid association: %w", err)
	}

	query, args, err := builder.Insert("users_movies").
		Columns("user_id", "movie_id", "watchlist_status", "user_rating").
		Values(um.UserID, um.MovieID, um.Status, um.Rating).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build association insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %s: %w", um, shared.ClassifyError(err))
	}
	return nil
}

// Get retrieves the association for a movie and user.
func (r *UserMovieRepository) Get(ctx context.Context, movieID, userID int64) (*models.UserMovie, error) {
	var um models.UserMovie
	query := `SELECT user_id, movie_id, watchlist_status, user_rating FROM users_movies WHERE user_id = ? AND movie_id = ?`
	what := fmt.Sprintf("association user=%d movie=%d", userID, movieID)
	if err := getOne(ctx, r.db, &um, what, query, userID, movieID); err != nil {
		return nil, err
	}
	return &um, nil
}

// Update writes the status and rating of an existing association.
func (r *UserMovieRepository) Update(ctx context.Context, um *models.UserMovie) error {
	if err := um.Validate(); err != nil {
		return fmt.Errorf("invalid association: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users_movies SET watchlist_status = ?, user_rating = ? WHERE user_id = ? AND movie_id = ?`,
		um.Status, um.Rating, um.UserID, um.MovieID,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", um, shared.ClassifyError(err))
	}
	return affectOne(result, um.String())
}

// Delete removes an association. The movie row is left in place.
func (r *UserMovieRepository) Delete(ctx context.Context, userID, movieID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users_movies WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return fmt.Errorf("failed to delete association: %w", err)
	}
	return affectOne(result, fmt.Sprintf("association user=%d movie=%d", userID, movieID))
}

// ListEntries returns a user's catalog joined with movie name and poster, ordered by movie ID.
//
// An empty status returns every entry.
func (r *UserMovieRepository) ListEntries(ctx context.Context, userID int64, status models.WatchStatus) ([]models.UserMovieEntry, error) {
	b := builder.
		Select("um.movie_id", "m.movie_name", "m.movie_poster", "um.watchlist_status", "um.user_rating").
		From("users_movies um").
		Join("movies m ON m.id = um.movie_id").
		Where(sq.Eq{"um.user_id": userID}).
		OrderBy("um.movie_id ASC")

	if status != "" {
		b = b.Where(sq.Eq{"um.watchlist_status": string(status)})
	}

	entries := []models.UserMovieEntry{}
	if err := selectBuilt(ctx, r.db, &entries, "catalog entries", b); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByMovie returns how many users have the movie in their catalog.
func (r *UserMovieRepository) CountByMovie(ctx context.Context, movieID int64) (int, error) {
	var count int
	if err := getOne(ctx, r.db, &count, "association count", `SELECT COUNT(*) FROM users_movies WHERE movie_id = ?`, movieID); err != nil {
		return 0, err
	}
	return count, nil
}
