package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/repositories"
	"github.com/desertthunder/movieweb/internal/shared"
)

func setupManager(t *testing.T) (*Manager, *repositories.Store) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	store := repositories.NewStore(db)
	return New(store, nil), store
}

func inception() models.MovieDescriptor {
	return models.MovieDescriptor{
		Poster:   "https://example.com/inception.jpg",
		Name:     "Inception",
		Director: "Christopher Nolan",
		Year:     2010,
		Rating:   8.8,
		Plot:     "A thief who steals corporate secrets through dream-sharing technology.",
	}
}

func mustAddUser(t *testing.T, m *Manager, name string) *models.User {
	t.Helper()
	user, err := m.AddUser(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to add user %s: %v", name, err)
	}
	return user
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()
	m, _ := setupManager(t)

	t.Run("duplicates allowed", func(t *testing.T) {
		a := mustAddUser(t, m, "Alice")
		b := mustAddUser(t, m, "Alice")
		if a.ID == b.ID {
			t.Errorf("expected distinct ids, got %d twice", a.ID)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if _, err := m.AddUser(ctx, "  "); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("GetUser", func(t *testing.T) {
		if _, err := m.GetUser(ctx, 999); !errors.Is(err, ErrUserNotFound) || !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestAddMovieToUser(t *testing.T) {
	ctx := context.Background()

	t.Run("same title for two users shares one movie", func(t *testing.T) {
		m, _ := setupManager(t)
		alice := mustAddUser(t, m, "Alice")
		bob := mustAddUser(t, m, "Bob")

		first, err := m.AddMovieToUser(ctx, inception(), alice.ID, models.StatusWishlist, nil)
		if err != nil {
			t.Fatalf("first add failed: %v", err)
		}
		if first.Outcome != Created || !first.MovieCreated {
			t.Errorf("expected Created with new movie, got %+v", first)
		}

		desc := inception()
		desc.Name = "inception"
		second, err := m.AddMovieToUser(ctx, desc, bob.ID, models.StatusWatched, models.IntPtr(4))
		if err != nil {
			t.Fatalf("second add failed: %v", err)
		}
		if second.Outcome != Created || second.MovieCreated || second.MovieID != first.MovieID {
			t.Errorf("expected link to existing movie %d, got %+v", first.MovieID, second)
		}

		movies, err := m.ListMovies(ctx)
		if err != nil {
			t.Fatalf("failed to list movies: %v", err)
		}
		if len(movies) != 1 {
			t.Errorf("expected 1 movie, got %d", len(movies))
		}

		count, err := m.MovieStats(ctx, first.MovieID)
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 associations, got %d", count)
		}
	})

	t.Run("twice for one user", func(t *testing.T) {
		m, _ := setupManager(t)
		alice := mustAddUser(t, m, "Alice")

		if _, err := m.AddMovieToUser(ctx, inception(), alice.ID, models.StatusWishlist, nil); err != nil {
			t.Fatalf("first add failed: %v", err)
		}

		again, err := m.AddMovieToUser(ctx, inception(), alice.ID, models.StatusWatched, models.IntPtr(3))
		if err != nil {
			t.Fatalf("second add failed: %v", err)
		}
		if again.Outcome != AlreadyLinked || again.MovieCreated {
			t.Errorf("expected AlreadyLinked, got %+v", again)
		}

		entries, err := m.ListUserMovies(ctx, alice.ID)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(entries) != 1 || entries[0].Status != models.StatusWishlist || entries[0].Rating != nil {
			t.Errorf("existing association should be untouched, got %+v", entries)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		m, _ := setupManager(t)

		_, err := m.AddMovieToUser(ctx, inception(), 42, "", nil)
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}

		movies, err := m.ListMovies(ctx)
		if err != nil {
			t.Fatalf("failed to list movies: %v", err)
		}
		if len(movies) != 0 {
			t.Errorf("no movie should be created for an unknown user, got %v", movies)
		}
	})

	t.Run("validation", func(t *testing.T) {
		m, _ := setupManager(t)
		alice := mustAddUser(t, m, "Alice")

		tt := []struct {
			name    string
			desc    models.MovieDescriptor
			status  models.WatchStatus
			rating  *int
			wantErr error
		}{
			{name: "bad status", desc: inception(), status: "finished", wantErr: models.ErrInvalidStatus},
			{name: "missing director", desc: models.MovieDescriptor{Name: "Heat", Year: 1995}, wantErr: shared.ErrValidation},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := m.AddMovieToUser(ctx, tc.desc, alice.ID, tc.status, tc.rating); !errors.Is(err, tc.wantErr) {
					t.Errorf("expected %v, got %v", tc.wantErr, err)
				}
			})
		}

		movies, _ := m.ListMovies(ctx)
		if len(movies) != 0 {
			t.Errorf("failed validation must not write, got %v", movies)
		}
	})

	t.Run("rating stored as given", func(t *testing.T) {
		m, _ := setupManager(t)
		alice := mustAddUser(t, m, "Alice")

		res, err := m.AddMovieToUser(ctx, inception(), alice.ID, models.StatusWatched, models.IntPtr(5))
		if err != nil {
			t.Fatalf("add with rating 5 should succeed, got %v", err)
		}

		um, err := m.GetAssociation(ctx, res.MovieID, alice.ID)
		if err != nil {
			t.Fatalf("failed to get association: %v", err)
		}
		if um.Rating == nil || *um.Rating != 5 {
			t.Errorf("expected rating 5, got %v", um)
		}

		if err := m.UpdateAssociation(ctx, alice.ID, res.MovieID, 5, models.StatusWatched); !errors.Is(err, models.ErrInvalidRating) {
			t.Errorf("update with rating 5 should still fail, got %v", err)
		}
	})
}

func TestAddMovieToUserConcurrent(t *testing.T) {
	ctx := context.Background()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, "catalog.sqlite", 4, 4)

	if err := shared.RunMigrations(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	m := New(repositories.NewStore(db), nil)

	const workers = 6
	users := make([]int64, workers)
	for i := range users {
		users[i] = mustAddUser(t, m, fmt.Sprintf("user-%d", i)).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for _, id := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := m.AddMovieToUser(ctx, inception(), id, models.StatusWishlist, nil); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent add failed: %v", err)
	}

	movies, err := m.ListMovies(ctx)
	if err != nil {
		t.Fatalf("failed to list movies: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected exactly 1 movie row, got %d", len(movies))
	}

	count, err := m.MovieStats(ctx, movies[0].ID)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if count != workers {
		t.Errorf("expected %d associations, got %d", workers, count)
	}
}

func TestUpdateAssociation(t *testing.T) {
	ctx := context.Background()
	m, _ := setupManager(t)
	alice := mustAddUser(t, m, "Alice")
	res, err := m.AddMovieToUser(ctx, inception(), alice.ID, models.StatusWishlist, nil)
	if err != nil {
		t.Fatalf("failed to add movie: %v", err)
	}

	t.Run("rating boundaries", func(t *testing.T) {
		for _, rating := range []int{1, 5, 0, 10} {
			err := m.UpdateAssociation(ctx, alice.ID, res.MovieID, rating, models.StatusWatched)
			if !errors.Is(err, models.ErrInvalidRating) || !errors.Is(err, shared.ErrValidation) {
				t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
			}
		}

		for _, rating := range []int{2, 3, 4} {
			if err := m.UpdateAssociation(ctx, alice.ID, res.MovieID, rating, models.StatusWatched); err != nil {
				t.Errorf("rating %d: unexpected error %v", rating, err)
			}
			um, err := m.GetAssociation(ctx, res.MovieID, alice.ID)
			if err != nil {
				t.Fatalf("failed to get association: %v", err)
			}
			if um.Rating == nil || *um.Rating != rating {
				t.Errorf("rating %d not persisted: %s", rating, um)
			}
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		err := m.UpdateAssociation(ctx, alice.ID, res.MovieID, 3, "finished")
		if !errors.Is(err, models.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("validation before lookup", func(t *testing.T) {
		err := m.UpdateAssociation(ctx, alice.ID, 999, 5, models.StatusWatched)
		if errors.Is(err, shared.ErrNotFound) || !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("missing pair", func(t *testing.T) {
		err := m.UpdateAssociation(ctx, alice.ID, 999, 3, models.StatusWatched)
		if !errors.Is(err, ErrAssociationNotFound) || errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrAssociationNotFound, got %v", err)
		}

		entries, _ := m.ListUserMovies(ctx, alice.ID)
		if len(entries) != 1 {
			t.Errorf("missing-pair update must not mutate, got %+v", entries)
		}
	})
}

func TestRemoveAssociation(t *testing.T) {
	ctx := context.Background()
	m, _ := setupManager(t)
	alice := mustAddUser(t, m, "Alice")
	bob := mustAddUser(t, m, "Bob")

	res, err := m.AddMovieToUser(ctx, inception(), alice.ID, "", nil)
	if err != nil {
		t.Fatalf("failed to add movie: %v", err)
	}
	if _, err := m.AddMovieToUser(ctx, inception(), bob.ID, "", nil); err != nil {
		t.Fatalf("failed to add movie: %v", err)
	}

	if err := m.RemoveAssociation(ctx, alice.ID, res.MovieID); err != nil {
		t.Fatalf("failed to remove association: %v", err)
	}

	if _, err := m.GetAssociation(ctx, res.MovieID, alice.ID); !errors.Is(err, ErrAssociationNotFound) {
		t.Errorf("expected association gone, got %v", err)
	}
	if _, err := m.GetAssociation(ctx, res.MovieID, bob.ID); err != nil {
		t.Errorf("other user's association should remain: %v", err)
	}
	if _, err := m.GetMovie(ctx, res.MovieID); err != nil {
		t.Errorf("movie should remain: %v", err)
	}

	if err := m.RemoveAssociation(ctx, alice.ID, res.MovieID); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	m, _ := setupManager(t)
	alice := mustAddUser(t, m, "Alice")

	t.Run("empty catalog", func(t *testing.T) {
		entries, err := m.ListUserMovies(ctx, alice.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entries == nil || len(entries) != 0 {
			t.Errorf("expected empty slice, got %v", entries)
		}
	})

	if _, err := m.AddMovieToUser(ctx, inception(), alice.ID, models.StatusWatching, nil); err != nil {
		t.Fatalf("failed to add movie: %v", err)
	}

	t.Run("FindMovieByName ignores case", func(t *testing.T) {
		lower, err := m.FindMovieByName(ctx, "inception")
		if err != nil {
			t.Fatalf("lowercase lookup failed: %v", err)
		}
		upper, err := m.FindMovieByName(ctx, "Inception")
		if err != nil {
			t.Fatalf("titlecase lookup failed: %v", err)
		}
		if *lower != *upper {
			t.Errorf("expected same record, got %+v and %+v", lower, upper)
		}

		if _, err := m.FindMovieByName(ctx, "Heat"); !errors.Is(err, ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("GetMovie missing", func(t *testing.T) {
		if _, err := m.GetMovie(ctx, 404); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("by status", func(t *testing.T) {
		watching, err := m.ListUserMoviesByStatus(ctx, alice.ID, models.StatusWatching)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(watching) != 1 {
			t.Errorf("expected 1 watching entry, got %d", len(watching))
		}

		if _, err := m.ListUserMoviesByStatus(ctx, alice.ID, "finished"); !errors.Is(err, models.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	m, store := setupManager(t)

	a := mustAddUser(t, m, "A")
	b := mustAddUser(t, m, "B")
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected user ids 1 and 2, got %d and %d", a.ID, b.ID)
	}

	res, err := m.AddMovieToUser(ctx, inception(), a.ID, models.StatusWishlist, nil)
	if err != nil {
		t.Fatalf("user A add failed: %v", err)
	}
	if res.MovieID != 1 {
		t.Fatalf("expected movie id 1, got %d", res.MovieID)
	}

	um, err := m.GetAssociation(ctx, 1, 1)
	if err != nil {
		t.Fatalf("failed to get (1,1): %v", err)
	}
	if um.Status != models.StatusWishlist || um.Rating != nil {
		t.Errorf("expected (1,1,wishlist,null), got %s", um)
	}

	res, err = m.AddMovieToUser(ctx, inception(), b.ID, models.StatusWatched, models.IntPtr(4))
	if err != nil {
		t.Fatalf("user B add failed: %v", err)
	}
	if res.MovieCreated || res.MovieID != 1 {
		t.Errorf("expected link to movie 1 without creation, got %+v", res)
	}

	um, err = m.GetAssociation(ctx, 1, 2)
	if err != nil {
		t.Fatalf("failed to get (2,1): %v", err)
	}
	if um.Status != models.StatusWatched || um.Rating == nil || *um.Rating != 4 {
		t.Errorf("expected (2,1,watched,4), got %s", um)
	}

	if err := m.UpdateAssociation(ctx, 1, 1, 3, models.StatusWatched); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	um, err = m.GetAssociation(ctx, 1, 1)
	if err != nil {
		t.Fatalf("failed to get (1,1): %v", err)
	}
	if um.Status != models.StatusWatched || *um.Rating != 3 {
		t.Errorf("expected (1,1,watched,3), got %s", um)
	}

	if err := m.RemoveAssociation(ctx, 2, 1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := m.GetAssociation(ctx, 1, 2); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected (2,1) gone, got %v", err)
	}
	if _, err := m.GetMovie(ctx, 1); err != nil {
		t.Errorf("movie 1 should still exist: %v", err)
	}

	count, err := store.UserMovies.CountByMovie(ctx, 1)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("movie 1 should be referenced only by (1,1), got %d references", count)
	}
}
