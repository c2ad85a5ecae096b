// package services defines interface MetadataService for looking up movie metadata over HTTP
package services

import (
	"context"

	"github.com/desertthunder/movieweb/internal/models"
)

// MetadataService resolves a movie title into the metadata needed to create a catalog entry.
type MetadataService interface {
	// Lookup fetches metadata for the best match of title.
	// Returns [shared.ErrMovieNotFound] when the provider has no match.
	Lookup(ctx context.Context, title string) (*models.MovieDescriptor, error)

	// Name returns the name of the provider (e.g., "OMDb")
	Name() string
}
