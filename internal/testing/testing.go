// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/seedmix/internal/services"
)

// MockCatalog is a configurable test double for [services.Catalog].
// Unset function fields return empty results.
type MockCatalog struct {
	SearchTracksFunc    func(ctx context.Context, query string, limit int) ([]services.Track, error)
	SearchArtistsFunc   func(ctx context.Context, name string, limit int) ([]services.Artist, error)
	ArtistTopTracksFunc func(ctx context.Context, artistID string) ([]services.Track, error)
}

func (m *MockCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]services.Track, error) {
	if m.SearchTracksFunc != nil {
		return m.SearchTracksFunc(ctx, query, limit)
	}
	return nil, nil
}

func (m *MockCatalog) SearchArtists(ctx context.Context, name string, limit int) ([]services.Artist, error) {
	if m.SearchArtistsFunc != nil {
		return m.SearchArtistsFunc(ctx, name, limit)
	}
	return nil, nil
}

func (m *MockCatalog) ArtistTopTracks(ctx context.Context, artistID string) ([]services.Track, error) {
	if m.ArtistTopTracksFunc != nil {
		return m.ArtistTopTracksFunc(ctx, artistID)
	}
	return nil, nil
}

// MockSuggester is a configurable test double for [services.Suggester].
type MockSuggester struct {
	CompleteFunc func(ctx context.Context, system, user string) (string, error)
	Calls        int
}

func (m *MockSuggester) Complete(ctx context.Context, system, user string) (string, error) {
	m.Calls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return "", nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
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

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
