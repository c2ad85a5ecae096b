package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/repositories"
	"github.com/desertthunder/movieweb/internal/shared"
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", shared.ErrNotFound)
	ErrMovieNotFound       = fmt.Errorf("movie %w", shared.ErrNotFound)
	ErrAssociationNotFound = fmt.Errorf("association %w", shared.ErrNotFound)
)

// Outcome describes what [Manager.AddMovieToUser] did.
type Outcome int

const (
	// Created means a new association was written.
	Created Outcome = iota
	// AlreadyLinked means the user already had the movie and nothing was written.
	AlreadyLinked
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case AlreadyLinked:
		return "already_linked"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// AddResult reports the outcome of adding a movie to a catalog.
//
// Failure is reported through the accompanying error, not the result.
type AddResult struct {
	Outcome      Outcome `json:"outcome"`
	MovieID      int64   `json:"movie_id"`
	MovieCreated bool    `json:"movie_created"`
}

// Manager performs catalog operations against an injected store.
type Manager struct {
	store  *repositories.Store
	logger *log.Logger
}

// New creates a [Manager]. A nil logger discards output.
func New(store *repositories.Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{store: store, logger: logger}
}

// ListUsers returns every user ordered by ID.
func (m *Manager) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.store.Users.List(ctx)
}

// GetUser returns a user or [ErrUserNotFound].
func (m *Manager) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := m.store.Users.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}
	return user, err
}

// ListMovies returns every movie ordered by ID.
func (m *Manager) ListMovies(ctx context.Context) ([]models.Movie, error) {
	return m.store.Movies.List(ctx, repositories.MovieFilter{})
}

// SearchMovies returns movies narrowed by filter.
func (m *Manager) SearchMovies(ctx context.Context, filter repositories.MovieFilter) ([]models.Movie, error) {
	return m.store.Movies.List(ctx, filter)
}

// GetMovie returns a movie or [ErrMovieNotFound].
func (m *Manager) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	movie, err := m.store.Movies.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrMovieNotFound, id)
	}
	return movie, err
}

// FindMovieByName returns the movie whose name matches ignoring case, or [ErrMovieNotFound].
func (m *Manager) FindMovieByName(ctx context.Context, name string) (*models.Movie, error) {
	movie, err := m.store.Movies.GetByName(ctx, name)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrMovieNotFound, name)
	}
	return movie, err
}

// GetAssociation returns the user's association with a movie, or [ErrAssociationNotFound].
func (m *Manager) GetAssociation(ctx context.Context, movieID, userID int64) (*models.UserMovie, error) {
	um, err := m.store.UserMovies.Get(ctx, movieID, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d movie %d", ErrAssociationNotFound, userID, movieID)
	}
	return um, err
}

// ListUserMovies returns a user's catalog. A user with no movies gets an empty slice.
func (m *Manager) ListUserMovies(ctx context.Context, userID int64) ([]models.UserMovieEntry, error) {
	return m.store.UserMovies.ListEntries(ctx, userID, "")
}

// ListUserMoviesByStatus returns the catalog entries with the given status.
func (m *Manager) ListUserMoviesByStatus(ctx context.Context, userID int64, status models.WatchStatus) ([]models.UserMovieEntry, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: got %q", models.ErrInvalidStatus, status)
	}
	return m.store.UserMovies.ListEntries(ctx, userID, status)
}

// MovieStats returns how many catalogs contain the movie.
func (m *Manager) MovieStats(ctx context.Context, movieID int64) (int, error) {
	if _, err := m.GetMovie(ctx, movieID); err != nil {
		return 0, err
	}
	return m.store.UserMovies.CountByMovie(ctx, movieID)
}

// AddUser creates a user. Names need not be unique.
func (m *Manager) AddUser(ctx context.Context, name string) (*models.User, error) {
	user := models.NewUser(name)
	if err := m.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	m.logger.Info("added user", "id", user.ID, "name", user.UserName)
	return user, nil
}

// AddMovieToUser links the described movie to a user's catalog, creating the movie first when no movie with the
// same name (ignoring case) exists.
//
// An empty status and nil rating are stored as NULL. The rating is stored as given; its range is checked on
// update. When a concurrent caller creates the same movie first, the operation is retried once and links the
// winner's row.
func (m *Manager) AddMovieToUser(ctx context.Context, desc models.MovieDescriptor, userID int64, status models.WatchStatus, rating *int) (AddResult, error) {
	if err := desc.Validate(); err != nil {
		return AddResult{}, fmt.Errorf("invalid movie metadata: %w", err)
	}

	if status != "" && !status.Valid() {
		return AddResult{}, fmt.Errorf("%w: got %q", models.ErrInvalidStatus, status)
	}

	um := models.UserMovie{UserID: userID, Status: status, Rating: rating}

	result, err := m.addMovieToUser(ctx, desc, um)
	if errors.Is(err, shared.ErrDuplicate) {
		m.logger.Debug("movie created concurrently, retrying as link", "name", desc.Name)
		result, err = m.addMovieToUser(ctx, desc, um)
	}
	if err != nil {
		return AddResult{}, err
	}

	m.logger.Info("added movie to catalog",
		"user", userID, "movie", result.MovieID, "outcome", result.Outcome, "movie_created", result.MovieCreated,
	)
	return result, nil
}

func (m *Manager) addMovieToUser(ctx context.Context, desc models.MovieDescriptor, um models.UserMovie) (AddResult, error) {
	var result AddResult

	err := m.store.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.Get(ctx, um.UserID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, um.UserID)
			}
			return err
		}

		movie, err := tx.Movies.GetByName(ctx, desc.Name)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			movie = desc.Movie()
			if err := tx.Movies.Create(ctx, movie); err != nil {
				return err
			}
			result.MovieCreated = true
		case err != nil:
			return err
		default:
			if _, err := tx.UserMovies.Get(ctx, movie.ID, um.UserID); err == nil {
				result.Outcome = AlreadyLinked
				result.MovieID = movie.ID
				return nil
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		result.MovieID = movie.ID
		um.MovieID = movie.ID
		if err := tx.UserMovies.Create(ctx, &um); err != nil {
			if errors.Is(err, shared.ErrForeignKey) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, um.UserID)
			}
			return err
		}

		result.Outcome = Created
		return nil
	})

	return result, err
}

// UpdateAssociation overwrites the status and rating of an existing association.
//
// Input is validated before any lookup, so invalid input never reports [ErrAssociationNotFound].
func (m *Manager) UpdateAssociation(ctx context.Context, userID, movieID int64, rating int, status models.WatchStatus) error {
	if err := models.ValidateRating(rating); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: got %q", models.ErrInvalidStatus, status)
	}

	err := m.store.WithTx(ctx, func(tx *repositories.Store) error {
		um, err := tx.UserMovies.Get(ctx, movieID, userID)
		if err != nil {
			return err
		}

		um.Status = status
		um.Rating = &rating
		return tx.UserMovies.Update(ctx, um)
	})
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: user %d movie %d", ErrAssociationNotFound, userID, movieID)
	}
	if err != nil {
		return err
	}

	m.logger.Info("updated association", "user", userID, "movie", movieID, "status", status, "rating", rating)
	return nil
}

// RemoveAssociation deletes one association. The movie and other users' associations are untouched.
func (m *Manager) RemoveAssociation(ctx context.Context, userID, movieID int64) error {
	err := m.store.UserMovies.Delete(ctx, userID, movieID)
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: user %d movie %d", ErrAssociationNotFound, userID, movieID)
	}
	if err != nil {
		return err
	}

	m.logger.Info("removed association", "user", userID, "movie", movieID)
	return nil
}
