package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultOMDbURL   = "https://www.omdbapi.com"
	omdbNotAvailable = "N/A"
	omdbNotFound     = "Movie not found!"
)

// OMDbService implements [MetadataService] for the OMDb API.
type OMDbService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
	group      singleflight.Group
}

// omdbResponse is the subset of the OMDb title reply that maps onto a [models.MovieDescriptor].
type omdbResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Poster     string `json:"Poster"`
	Plot       string `json:"Plot"`
	IMDbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// NewOMDbService creates an OMDb client from configuration.
//
// A nil client uses a fresh [http.Client] with the configured timeout. When cfg.AccessToken is set the client's
// transport is wrapped so every request carries it as a bearer token.
func NewOMDbService(cfg shared.MetadataConfig, client *http.Client) (*OMDbService, error) {
	if cfg.APIKey == "" && cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: set metadata.api_key or %s", shared.ErrMissingCredentials, shared.EnvAPIKey)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOMDbURL
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}

	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken}))
		authed.Timeout = client.Timeout
		client = authed
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	ttl := cfg.CacheTTL()
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &OMDbService{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		cache:      cache.New(ttl, 10*time.Minute),
	}, nil
}

func (s *OMDbService) Name() string { return "OMDb" }

// Lookup fetches metadata for title, serving repeated titles from the cache.
func (s *OMDbService) Lookup(ctx context.Context, title string) (*models.MovieDescriptor, error) {
	key := shared.NormalizeTitle(title)
	if key == "" {
		return nil, fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	if cached, ok := s.cache.Get(key); ok {
		desc := cached.(models.MovieDescriptor)
		return &desc, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		desc, err := s.fetch(ctx, strings.TrimSpace(title))
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, *desc, cache.DefaultExpiration)
		return *desc, nil
	})
	if err != nil {
		return nil, err
	}

	desc := v.(models.MovieDescriptor)
	return &desc, nil
}

func (s *OMDbService) fetch(ctx context.Context, title string) (*models.MovieDescriptor, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", shared.ErrAPIRequest, err)
	}

	params := url.Values{}
	params.Set("t", title)
	if s.apiKey != "" {
		params.Set("apikey", s.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// url.Error carries the request URL, and with it the api key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reply omdbResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMalformedResponse, err)
	}

	return reply.descriptor(title)
}

// descriptor validates the reply and converts it.
func (r omdbResponse) descriptor(title string) (*models.MovieDescriptor, error) {
	if strings.EqualFold(r.Response, "False") {
		if r.Error == omdbNotFound {
			return nil, fmt.Errorf("%w: %q", shared.ErrMovieNotFound, title)
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, r.Error)
	}

	fields := []struct{ name, value string }{
		{"Title", r.Title}, {"Director", r.Director}, {"Poster", r.Poster}, {"Plot", r.Plot},
	}
	for _, f := range fields {
		if missing(f.value) {
			return nil, fmt.Errorf("%w: %s is missing", shared.ErrMalformedResponse, f.name)
		}
	}

	year, err := parseYear(r.Year)
	if err != nil {
		return nil, err
	}

	rating, err := strconv.ParseFloat(r.IMDbRating, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: imdbRating %q", shared.ErrMalformedResponse, r.IMDbRating)
	}

	desc := &models.MovieDescriptor{
		Poster:   r.Poster,
		Name:     r.Title,
		Director: r.Director,
		Year:     year,
		Rating:   rating,
		Plot:     r.Plot,
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMalformedResponse, err)
	}
	return desc, nil
}

func missing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == omdbNotAvailable
}

// parseYear reads the leading four digits so series ranges like "2010–2014" resolve to their first year.
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0, fmt.Errorf("%w: Year %q", shared.ErrMalformedResponse, s)
	}

	year, err := strconv.Atoi(s[:4])
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: Year %q", shared.ErrMalformedResponse, s)
	}
	return year, nil
}
