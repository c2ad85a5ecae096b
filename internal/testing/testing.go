// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/shared"
)

// MockMetadataService is a test double for [services.MetadataService] backed by a title map.
//
// Titles are matched after [shared.NormalizeTitle]. Errors registered with FailOn take precedence.
type MockMetadataService struct {
	mu       sync.Mutex
	movies   map[string]models.MovieDescriptor
	failures map[string]error
	calls    map[string]int
}

// NewMockMetadataService creates a mock that knows the given descriptors.
func NewMockMetadataService(descs ...models.MovieDescriptor) *MockMetadataService {
	m := &MockMetadataService{
		movies:   make(map[string]models.MovieDescriptor),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
	for _, d := range descs {
		m.movies[shared.NormalizeTitle(d.Name)] = d
	}
	return m
}

// FailOn makes lookups of title return err.
func (m *MockMetadataService) FailOn(title string, err error) *MockMetadataService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[shared.NormalizeTitle(title)] = err
	return m
}

func (m *MockMetadataService) Lookup(ctx context.Context, title string) (*models.MovieDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := shared.NormalizeTitle(title)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[key]++

	if err, ok := m.failures[key]; ok {
		return nil, err
	}
	d, ok := m.movies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrMovieNotFound, title)
	}
	return &d, nil
}

// Calls returns how many times title was looked up.
func (m *MockMetadataService) Calls(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[shared.NormalizeTitle(title)]
}

func (m *MockMetadataService) Name() string { return "mock" }

// Descriptor builds a complete [models.MovieDescriptor] for name.
func Descriptor(name, director string, year int) models.MovieDescriptor {
	return models.MovieDescriptor{
		Poster:   "https://example.com/posters/" + shared.NormalizeTitle(name) + ".jpg",
		Name:     name,
		Director: director,
		Year:     year,
		Rating:   7.5,
		Plot:     "The plot of " + name + ".",
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
