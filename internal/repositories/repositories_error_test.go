package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlite3")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			err := repo.Create(ctx, models.NewUser("   "))
			if !errors.Is(err, shared.ErrValidation) {
				t.Fatalf("expected validation error for empty name, got %v", err)
			}
		})

		t.Run("StorageFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("disk I/O error"))

			err := NewUserRepository(db).Create(ctx, models.NewUser("Alice"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "disk I/O error")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			_, err := repo.Get(ctx, 42)
			if !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("StorageFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery("SELECT id, user_name FROM users").WillReturnError(errors.New("database is locked"))

			_, err := NewUserRepository(db).Get(ctx, 1)
			require.Error(t, err)
			assert.NotErrorIs(t, err, shared.ErrNotFound)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("List", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT id, user_name FROM users ORDER BY id ASC").WillReturnError(errors.New("no such table: users"))

		users, err := NewUserRepository(db).List(ctx)
		require.Error(t, err)
		assert.Nil(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMovieRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicateName", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		if err := repo.Create(ctx, testMovie("Inception")); err != nil {
			t.Fatalf("failed to create first movie: %v", err)
		}

		err := repo.Create(ctx, testMovie("Inception"))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		movie := testMovie("Inception")
		movie.Plot = ""

		if err := repo.Create(ctx, movie); !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		if _, err := repo.Get(ctx, 99); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListStorageFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM movies").WillReturnError(errors.New("disk I/O error"))

		_, err := NewMovieRepository(db).List(ctx, MovieFilter{Director: "Nolan"})
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserMovieRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicatePair", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		user := models.NewUser("Alice")
		movie := testMovie("Inception")
		require.NoError(t, store.Users.Create(ctx, user))
		require.NoError(t, store.Movies.Create(ctx, movie))

		um := &models.UserMovie{UserID: user.ID, MovieID: movie.ID}
		require.NoError(t, store.UserMovies.Create(ctx, um))

		err := store.UserMovies.Create(ctx, um)
		assert.ErrorIs(t, err, shared.ErrDuplicate)
	})

	t.Run("MissingReferences", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		err := store.UserMovies.Create(ctx, &models.UserMovie{UserID: 7, MovieID: 9})
		assert.ErrorIs(t, err, shared.ErrForeignKey)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		err := store.UserMovies.Create(ctx, &models.UserMovie{UserID: 1, MovieID: 1, Status: "finished"})
		assert.ErrorIs(t, err, models.ErrInvalidStatus)
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		err := store.UserMovies.Update(ctx, &models.UserMovie{UserID: 1, MovieID: 1, Status: models.StatusWatched})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		err := store.UserMovies.Delete(ctx, 1, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("ListEntriesStorageFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM users_movies um JOIN movies m").WillReturnError(errors.New("disk I/O error"))

		entries, err := NewUserMovieRepository(db).ListEntries(ctx, 1, models.StatusWatched)
		require.Error(t, err)
		assert.Nil(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithTxErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("BeginFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

		called := false
		err := NewStore(db).WithTx(ctx, func(*Store) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("disk I/O error"))
		mock.ExpectRollback()

		err := NewStore(db).WithTx(ctx, func(tx *Store) error {
			return tx.Users.Create(ctx, models.NewUser("Alice"))
		})
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CommitFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit().WillReturnError(errors.New("disk full"))

		err := NewStore(db).WithTx(ctx, func(tx *Store) error {
			return tx.Users.Create(ctx, models.NewUser("Alice"))
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})
}
