package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/movieweb/internal/shared"
	tu "github.com/desertthunder/movieweb/internal/testing"
)

const inceptionJSON = `{
	"Title": "Inception",
	"Year": "2010",
	"Director": "Christopher Nolan",
	"Poster": "https://m.media-amazon.com/images/inception.jpg",
	"Plot": "A thief who steals corporate secrets through the use of dream-sharing technology.",
	"imdbRating": "8.8",
	"Response": "True"
}`

func testConfig(baseURL string) shared.MetadataConfig {
	return shared.MetadataConfig{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		TimeoutSeconds:  5,
		CacheTTLSeconds: 60,
	}
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*OMDbService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewOMDbService(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv, server
}

func TestNewOMDbService(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := NewOMDbService(shared.MetadataConfig{}, nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default BaseURL", func(t *testing.T) {
		srv, err := NewOMDbService(shared.MetadataConfig{APIKey: "k"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if srv.baseURL != DefaultOMDbURL {
			t.Errorf("expected %s, got %s", DefaultOMDbURL, srv.baseURL)
		}
		if srv.Name() != "OMDb" {
			t.Errorf("unexpected name %s", srv.Name())
		}
	})

	t.Run("Custom Client", func(t *testing.T) {
		client := &http.Client{}
		srv, err := NewOMDbService(shared.MetadataConfig{APIKey: "k", BaseURL: "http://example.com/"}, client)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if srv.httpClient != client {
			t.Error("expected custom client to be used")
		}
		if srv.baseURL != "http://example.com" {
			t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
		}
	})
}

func TestOMDbLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET method, got %s", r.Method)
			}
			if got := r.URL.Query().Get("t"); got != "Inception" {
				t.Errorf("expected t=Inception, got %q", got)
			}
			if got := r.URL.Query().Get("apikey"); got != "test-key" {
				t.Errorf("expected apikey=test-key, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, inceptionJSON)
		})

		desc, err := srv.Lookup(ctx, "Inception")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if desc.Name != "Inception" || desc.Director != "Christopher Nolan" || desc.Year != 2010 || desc.Rating != 8.8 {
			t.Errorf("unexpected descriptor: %+v", desc)
		}
	})

	t.Run("Cached By Normalized Title", func(t *testing.T) {
		var hits atomic.Int32
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			io.WriteString(w, inceptionJSON)
		})

		for _, title := range []string{"Inception", "inception", "  INCEPTION  "} {
			if _, err := srv.Lookup(ctx, title); err != nil {
				t.Fatalf("lookup %q failed: %v", title, err)
			}
		}
		if hits.Load() != 1 {
			t.Errorf("expected 1 upstream request, got %d", hits.Load())
		}
	})

	t.Run("Concurrent Lookups Coalesce", func(t *testing.T) {
		var hits atomic.Int32
		release := make(chan struct{})
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			<-release
			io.WriteString(w, inceptionJSON)
		})

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := srv.Lookup(ctx, "Inception"); err != nil {
					t.Errorf("lookup failed: %v", err)
				}
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		if hits.Load() != 1 {
			t.Errorf("expected 1 upstream request, got %d", hits.Load())
		}
	})

	t.Run("Series Year Range", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"Title":"Sherlock","Year":"2010–2017","Director":"Paul McGuigan","Poster":"https://example.com/s.jpg","Plot":"A detective.","imdbRating":"9.1","Response":"True"}`)
		})

		desc, err := srv.Lookup(ctx, "Sherlock")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if desc.Year != 2010 {
			t.Errorf("expected 2010, got %d", desc.Year)
		}
	})

	t.Run("Bearer Token", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			io.WriteString(w, inceptionJSON)
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.APIKey = ""
		cfg.AccessToken = "proxy-token"
		srv, err := NewOMDbService(cfg, nil)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.Lookup(ctx, "Inception"); err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if auth != "Bearer proxy-token" {
			t.Errorf("expected bearer header, got %q", auth)
		}
	})

	t.Run("Empty Title", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		if _, err := srv.Lookup(ctx, "   "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestOMDbLookupErrors(t *testing.T) {
	ctx := context.Background()

	tt := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "Movie Not Found", status: http.StatusOK, body: `{"Response":"False","Error":"Movie not found!"}`, wantErr: shared.ErrMovieNotFound},
		{name: "Invalid Key", status: http.StatusOK, body: `{"Response":"False","Error":"Invalid API key!"}`, wantErr: shared.ErrAPIRequest},
		{name: "Server Error", status: http.StatusInternalServerError, body: "boom", wantErr: shared.ErrAPIRequest},
		{name: "Unauthorized", status: http.StatusUnauthorized, body: `{"Response":"False","Error":"No API key provided."}`, wantErr: shared.ErrAPIRequest},
		{name: "Invalid JSON", status: http.StatusOK, body: `{not json`, wantErr: shared.ErrMalformedResponse},
		{
			name:    "Missing Director",
			status:  http.StatusOK,
			body:    `{"Title":"Inception","Year":"2010","Director":"N/A","Poster":"p","Plot":"x","imdbRating":"8.8","Response":"True"}`,
			wantErr: shared.ErrMalformedResponse,
		},
		{
			name:    "Unrated",
			status:  http.StatusOK,
			body:    `{"Title":"Inception","Year":"2010","Director":"d","Poster":"p","Plot":"x","imdbRating":"N/A","Response":"True"}`,
			wantErr: shared.ErrMalformedResponse,
		},
		{
			name:    "Bad Year",
			status:  http.StatusOK,
			body:    `{"Title":"Inception","Year":"20","Director":"d","Poster":"p","Plot":"x","imdbRating":"8.8","Response":"True"}`,
			wantErr: shared.ErrMalformedResponse,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})

			desc, err := srv.Lookup(ctx, "Inception")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if desc != nil {
				t.Errorf("expected nil descriptor, got %+v", desc)
			}
		})
	}

	t.Run("Failures Are Not Cached", func(t *testing.T) {
		var hits atomic.Int32
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			io.WriteString(w, inceptionJSON)
		})

		if _, err := srv.Lookup(ctx, "Inception"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if _, err := srv.Lookup(ctx, "Inception"); err != nil {
			t.Fatalf("retry should succeed, got %v", err)
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		srv, err := NewOMDbService(testConfig("http://omdb.invalid"), client)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.Lookup(ctx, "Inception")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if strings.Contains(err.Error(), "test-key") || strings.Contains(err.Error(), "omdb.invalid") {
			t.Errorf("transport error should not carry the request URL: %v", err)
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected the transport cause, got %v", err)
		}
	})

	t.Run("Body Read Error", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: make(http.Header)}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		srv, err := NewOMDbService(testConfig("http://omdb.invalid"), client)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.Lookup(ctx, "Inception"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, inceptionJSON)
		})
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := srv.Lookup(canceled, "Inception"); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}
