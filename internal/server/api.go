package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/movieweb/internal/catalog"
	"github.com/desertthunder/movieweb/internal/formatter"
	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/repositories"
	"github.com/desertthunder/movieweb/internal/services"
	"github.com/desertthunder/movieweb/internal/shared"
)

const maxBodyBytes = 1 << 20

var contentTypes = map[string]string{
	"csv":      "text/csv; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
	"md":       "text/markdown; charset=utf-8",
	"txt":      "text/plain; charset=utf-8",
	"text":     "text/plain; charset=utf-8",
}

// API serves the catalog over HTTP.
type API struct {
	catalog  *catalog.Manager
	metadata services.MetadataService
	logger   *log.Logger
}

// NewAPI creates an [API]. metadata may be nil, in which case adding movies by title answers 503.
func NewAPI(c *catalog.Manager, metadata services.MetadataService, logger *log.Logger) *API {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &API{catalog: c, metadata: metadata, logger: logger}
}

// Register adds the API routes to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/users", http.HandlerFunc(a.listUsers))
	r.Handle(http.MethodPost, "/users", http.HandlerFunc(a.addUser))
	r.Handle(http.MethodGet, "/users/{id}/movies", http.HandlerFunc(a.listUserMovies))
	r.Handle(http.MethodPost, "/users/{id}/movies", http.HandlerFunc(a.addUserMovie))
	r.Handle(http.MethodPut, "/users/{id}/movies/{movie_id}", http.HandlerFunc(a.updateUserMovie))
	r.Handle(http.MethodDelete, "/users/{id}/movies/{movie_id}", http.HandlerFunc(a.removeUserMovie))
	r.Handle(http.MethodGet, "/movies", http.HandlerFunc(a.listMovies))
	r.Handle(http.MethodGet, "/movies/search", http.HandlerFunc(a.findMovie))
	r.Handle(http.MethodGet, "/movies/{id}", http.HandlerFunc(a.getMovie))
}

// NewHandler builds the full HTTP handler with middleware applied.
func NewHandler(c *catalog.Manager, metadata services.MetadataService, logger *log.Logger) http.Handler {
	api := NewAPI(c, metadata, logger)

	router := NewBasicRouter()
	router.Use(RequestID, Logger(api.logger), Recover(api.logger))
	api.Register(router)

	return router
}

type errorBody struct {
	Error string `json:"error"`
}

type addUserRequest struct {
	UserName string `json:"user_name"`
}

type addMovieRequest struct {
	Title  string             `json:"title"`
	Status models.WatchStatus `json:"status"`
	Rating *int               `json:"rating"`
}

type addMovieResponse struct {
	catalog.AddResult
	Movie *models.Movie `json:"movie,omitempty"`
}

type updateRequest struct {
	Rating *int               `json:"rating"`
	Status models.WatchStatus `json:"status"`
}

type movieResponse struct {
	models.Movie
	Catalogs int `json:"catalogs"`
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.catalog.ListUsers(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) addUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.catalog.AddUser(r.Context(), req.UserName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) listUserMovies(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.catalog.GetUser(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var entries []models.UserMovieEntry
	if status := r.URL.Query().Get("status"); status != "" {
		entries, err = a.catalog.ListUserMoviesByStatus(r.Context(), userID, models.WatchStatus(status))
	} else {
		entries, err = a.catalog.ListUserMovies(r.Context(), userID)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	export := &formatter.CatalogExport{User: *user, Entries: entries}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, export)
		return
	}

	data, err := formatter.Render(format, export)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *API) addUserMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req addMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		a.writeError(w, r, fmt.Errorf("%w: title", shared.ErrMissingArgument))
		return
	}

	if _, err := a.catalog.GetUser(r.Context(), userID); err != nil {
		a.writeError(w, r, err)
		return
	}

	if a.metadata == nil {
		a.writeError(w, r, fmt.Errorf("%w: metadata lookup is not configured", shared.ErrServiceUnavailable))
		return
	}

	desc, err := a.metadata.Lookup(r.Context(), req.Title)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.catalog.AddMovieToUser(r.Context(), *desc, userID, req.Status, req.Rating)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	resp := addMovieResponse{AddResult: result, Movie: a.reloadMovie(r, result.MovieID)}

	status := http.StatusCreated
	if result.Outcome == catalog.AlreadyLinked {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// reloadMovie fetches a movie for an add response. The add has already committed, so a failure only drops the
// movie from the body.
func (a *API) reloadMovie(r *http.Request, id int64) *models.Movie {
	movie, err := a.catalog.GetMovie(r.Context(), id)
	if err != nil {
		a.logger.Debug("added movie could not be reloaded", "id", RequestIDFrom(r.Context()), "movie", id, "error", err)
		return nil
	}
	return movie
}

func (a *API) updateUserMovie(w http.ResponseWriter, r *http.Request) {
	userID, movieID, err := pairIDs(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Rating == nil {
		a.writeError(w, r, fmt.Errorf("%w: rating", shared.ErrMissingArgument))
		return
	}

	if err := a.catalog.UpdateAssociation(r.Context(), userID, movieID, *req.Rating, req.Status); err != nil {
		a.writeError(w, r, err)
		return
	}

	um, err := a.catalog.GetAssociation(r.Context(), movieID, userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, um)
}

func (a *API) removeUserMovie(w http.ResponseWriter, r *http.Request) {
	userID, movieID, err := pairIDs(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.catalog.RemoveAssociation(r.Context(), userID, movieID); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMovies(w http.ResponseWriter, r *http.Request) {
	filter := repositories.MovieFilter{Director: r.URL.Query().Get("director")}
	if year := r.URL.Query().Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			a.writeError(w, r, fmt.Errorf("%w: year %q", shared.ErrInvalidArgument, year))
			return
		}
		filter.Year = y
	}

	movies, err := a.catalog.SearchMovies(r.Context(), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (a *API) findMovie(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		a.writeError(w, r, fmt.Errorf("%w: name", shared.ErrMissingArgument))
		return
	}

	movie, err := a.catalog.FindMovieByName(r.Context(), name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (a *API) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	movie, err := a.catalog.GetMovie(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	count, err := a.catalog.MovieStats(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movieResponse{Movie: *movie, Catalogs: count})
}

// writeError maps err onto a status code. Server and upstream failures are logged and reported generically.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()

	switch status {
	case http.StatusInternalServerError:
		a.logger.Error("request failed", "id", RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err)
		msg = "internal server error"
	case http.StatusBadGateway:
		a.logger.Warn("metadata lookup failed", "id", RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err)
		msg = "metadata lookup failed"
	case http.StatusServiceUnavailable:
		a.logger.Warn("metadata unavailable", "id", RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err)
		msg = "metadata lookup is not available"
	}

	writeJSON(w, status, errorBody{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrAPIRequest), errors.Is(err, shared.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", shared.ErrInvalidArgument, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

func pairIDs(r *http.Request) (userID, movieID int64, err error) {
	if userID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if movieID, err = pathID(r, "movie_id"); err != nil {
		return 0, 0, err
	}
	return userID, movieID, nil
}
