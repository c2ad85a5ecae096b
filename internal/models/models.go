// package models defines the data model for the movie catalog
package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/go-playground/validator/v10"
)

// Personal ratings must be strictly between these bounds.
const (
	RatingExclusiveMin = 1
	RatingExclusiveMax = 5
)

var (
	ErrInvalidRating = fmt.Errorf("%w: rating must be an integer between %d and %d exclusive", shared.ErrValidation, RatingExclusiveMin, RatingExclusiveMax)
	ErrInvalidStatus = fmt.Errorf("%w: status must be 'watched', 'watching', or 'wishlist'", shared.ErrValidation)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("watchstatus", func(fl validator.FieldLevel) bool {
		s := WatchStatus(fl.Field().String())
		return s == "" || s.Valid()
	}); err != nil {
		panic(fmt.Sprintf("failed to register watchstatus validation: %v", err))
	}
	return v
}

// WatchStatus is a user's progress with a movie. The zero value means no status and is stored as NULL.
type WatchStatus string

const (
	StatusWatched  WatchStatus = "watched"
	StatusWatching WatchStatus = "watching"
	StatusWishlist WatchStatus = "wishlist"
)

// WatchStatuses lists every valid [WatchStatus] in display order.
var WatchStatuses = []WatchStatus{StatusWatched, StatusWatching, StatusWishlist}

// ParseWatchStatus returns the [WatchStatus] named by s or [ErrInvalidStatus].
func ParseWatchStatus(s string) (WatchStatus, error) {
	status := WatchStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// Valid reports whether s is one of the three statuses.
func (s WatchStatus) Valid() bool {
	switch s {
	case StatusWatched, StatusWatching, StatusWishlist:
		return true
	}
	return false
}

func (s WatchStatus) String() string { return string(s) }

// Value implements [driver.Valuer]; the empty status is written as NULL.
func (s WatchStatus) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return string(s), nil
}

// Scan implements [sql.Scanner].
func (s *WatchStatus) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = WatchStatus(v)
	case []byte:
		*s = WatchStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into WatchStatus", src)
	}
	return nil
}

// ValidateRating checks a personal rating against the exclusive bounds (only 2, 3 and 4 pass).
func ValidateRating(rating int) error {
	if rating <= RatingExclusiveMin || rating >= RatingExclusiveMax {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	return nil
}

// User is a catalog owner.
type User struct {
	ID       int64  `db:"id" json:"id"`
	UserName string `db:"user_name" json:"user_name" validate:"required"`
}

// NewUser returns an unsaved [User] with surrounding whitespace trimmed from the name.
func NewUser(name string) *User {
	return &User{UserName: strings.TrimSpace(name)}
}

// Validate checks the user's required fields.
func (u *User) Validate() error {
	return structError(validate.Struct(u))
}

// Movie is film metadata shared across catalogs. Names are unique.
type Movie struct {
	ID          int64   `db:"id" json:"id"`
	Poster      string  `db:"movie_poster" json:"movie_poster" validate:"required"`
	Name        string  `db:"movie_name" json:"movie_name" validate:"required"`
	Director    string  `db:"movie_director" json:"movie_director" validate:"required"`
	ReleaseYear int     `db:"release_year" json:"release_year" validate:"required"`
	Rating      float64 `db:"movie_rating" json:"movie_rating" validate:"gte=0"`
	Plot        string  `db:"movie_plot" json:"movie_plot" validate:"required"`
}

// Validate checks that every required movie field is present.
func (m *Movie) Validate() error {
	return structError(validate.Struct(m))
}

// UserMovie links a user to a movie in their catalog.
type UserMovie struct {
	UserID  int64       `db:"user_id" json:"user_id" validate:"required"`
	MovieID int64       `db:"movie_id" json:"movie_id" validate:"required"`
	Status  WatchStatus `db:"watchlist_status" json:"watchlist_status,omitempty" validate:"watchstatus"`
	Rating  *int        `db:"user_rating" json:"user_rating,omitempty"`
}

// Validate checks the foreign keys and the status. The rating range is only enforced on update, see
// [ValidateRating].
func (um *UserMovie) Validate() error {
	if err := validate.Struct(um); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Status" {
			return fmt.Errorf("%w: got %q", ErrInvalidStatus, um.Status)
		}
		return structError(err)
	}
	return nil
}

func (um UserMovie) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "UserMovie(user_id=%d, movie_id=%d", um.UserID, um.MovieID)
	if um.Status != "" {
		fmt.Fprintf(&b, " (watchlist status: %s)", um.Status)
	}
	if um.Rating != nil {
		fmt.Fprintf(&b, " (rating: %d)", *um.Rating)
	}
	b.WriteString(")")
	return b.String()
}

// UserMovieEntry is one row of a user's catalog: the association joined with movie name and poster.
type UserMovieEntry struct {
	MovieID int64       `db:"movie_id" json:"movie_id"`
	Name    string      `db:"movie_name" json:"movie_name"`
	Poster  string      `db:"movie_poster" json:"movie_poster"`
	Status  WatchStatus `db:"watchlist_status" json:"watchlist_status,omitempty"`
	Rating  *int        `db:"user_rating" json:"user_rating,omitempty"`
}

// MovieDescriptor is movie metadata as returned by the lookup service.
type MovieDescriptor struct {
	Poster   string  `json:"poster" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Director string  `json:"director" validate:"required"`
	Year     int     `json:"year" validate:"required,gt=0"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=10"`
	Plot     string  `json:"plot" validate:"required"`
}

// Validate checks that the descriptor carries every field a [Movie] requires.
func (d *MovieDescriptor) Validate() error {
	return structError(validate.Struct(d))
}

// Movie converts the descriptor into an unsaved [Movie].
func (d MovieDescriptor) Movie() *Movie {
	return &Movie{
		Poster:      d.Poster,
		Name:        strings.TrimSpace(d.Name),
		Director:    d.Director,
		ReleaseYear: d.Year,
		Rating:      d.Rating,
		Plot:        d.Plot,
	}
}

// IntPtr returns a pointer to v; used for optional ratings.
func IntPtr(v int) *int { return &v }

// structError wraps validator failures in [shared.ErrValidation] and names the failing fields.
func structError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", shared.ErrValidation, strings.Join(fields, ", "))
}
