// Package services defines the [MetadataService] interface for resolving a movie title into metadata and implements
// it against the OMDb API.
//
// # OMDb Implementation
//
// [OMDbService] issues `GET {base_url}/?apikey=...&t=<title>` and maps the JSON reply onto a
// [models.MovieDescriptor]. When an access token is configured the requests go through an [oauth2] client that adds
// a bearer header, for deployments that front OMDb with an authenticating proxy.
//
// Lookups are throttled with a token bucket, concurrent lookups of one title are coalesced, and successful results
// are cached by normalized title.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMovieNotFound] : OMDb has no movie with that title
//   - [shared.ErrMalformedResponse] : a required field is missing or unparseable
//   - [shared.ErrAPIRequest] : transport failure, non-2xx status or an OMDb error reply
//   - [shared.ErrMissingCredentials] : neither an API key nor an access token is configured
package services
