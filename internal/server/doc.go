// Package server exposes the catalog over a JSON HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so a request with the wrong method gets a
// 405 from the mux itself.
//
// # API
//
// [API] registers the catalog routes:
//
//	GET    /users
//	POST   /users
//	GET    /users/{id}/movies?status=&format=
//	POST   /users/{id}/movies
//	PUT    /users/{id}/movies/{movie_id}
//	DELETE /users/{id}/movies/{movie_id}
//	GET    /movies?director=&year=
//	GET    /movies/search?name=
//	GET    /movies/{id}
//
// Errors are rendered as {"error": "..."}. Validation failures map to 400 and absent records to 404. Anything else
// is logged with the request ID and answered with a generic 500.
//
// # Middleware
//
//   - [RequestID] : tags each request with a UUID (X-Request-ID)
//   - [Logger] : access log with method, path, status and duration
//   - [Recover] : converts handler panics into 500 responses
package server
