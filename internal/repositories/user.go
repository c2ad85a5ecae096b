package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/shared"
)

// UserRepository persists [models.User] rows.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new [UserRepository] with the given database handle
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create validates and inserts a new user, setting its ID from the database.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO users (user_name) VALUES (?)`, user.UserName)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", shared.ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id

	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := getOne(ctx, r.db, &user, fmt.Sprintf("user %d", id), `SELECT id, user_name FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves all users ordered by ID
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := selectBuilt(ctx, r.db, &users, "users", builder.Select("id", "user_name").From("users").OrderBy("id ASC")); err != nil {
		return nil, err
	}
	return users, nil
}
