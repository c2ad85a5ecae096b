// Package models defines the catalog entities and their validation rules.
//
// Persistent entities:
//   - [User] : a catalog owner; names are free text and may repeat
//   - [Movie] : film metadata shared by every catalog that references it
//   - [UserMovie] : the association between a user and a movie, carrying a [WatchStatus] and a personal rating
//
// Read models and inputs:
//   - [UserMovieEntry] : a user's association joined with the movie's name and poster
//   - [MovieDescriptor] : pre-validated metadata handed over by the lookup service
//
// Every entity exposes Validate, backed by go-playground/validator struct tags.
package models
