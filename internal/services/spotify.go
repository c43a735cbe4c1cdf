// Spotify API implementation of [Catalog]
//
// Uses the client-credentials grant: no user login is required because the
// pipeline only reads public catalog data (search, artist top tracks).
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/seedmix/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyPaginatedTracks represents the tracks portion of a search response.
type SpotifyPaginatedTracks struct {
	Items  []SpotifyTrack `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// SpotifyPaginatedArtists represents the artists portion of a search response.
type SpotifyPaginatedArtists struct {
	Items  []SpotifyArtist `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// SpotifySearchResponse represents a /search response; only requested types are present.
type SpotifySearchResponse struct {
	Tracks  *SpotifyPaginatedTracks  `json:"tracks"`
	Artists *SpotifyPaginatedArtists `json:"artists"`
}

// SpotifyTopTracksResponse represents an /artists/{id}/top-tracks response.
type SpotifyTopTracksResponse struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

// SpotifyService implements the [Catalog] interface for Spotify API interactions.
// Token acquisition and refresh are handled by the [clientcredentials] transport,
// so one token is fetched lazily and reused across calls.
type SpotifyService struct {
	httpClient *http.Client
	baseURL    string
	market     string
}

// NewSpotifyService creates a new Spotify catalog client with the given credentials.
// The market code scopes search results and top-track lookups (e.g. "US").
func NewSpotifyService(clientID, clientSecret, market string) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: SPOTIFY_CLIENT_ID/SECRET", shared.ErrMissingCredentials)
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		httpClient: conf.Client(context.Background()),
		baseURL:    spotifyBaseURL,
		market:     market,
	}, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search performs a combined search across the given types ("track", "artist",
// or "artist,track") and maps the response to compact collaborator types.
func (s *SpotifyService) Search(ctx context.Context, q, types string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("type", types)
	params.Set("limit", fmt.Sprintf("%d", limit))
	if s.market != "" {
		params.Set("market", s.market)
	}

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, "/search?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	result := &SearchResult{}
	if response.Tracks != nil {
		result.Tracks = mapTracks(response.Tracks.Items)
	}
	if response.Artists != nil {
		for _, a := range response.Artists.Items {
			result.Artists = append(result.Artists, Artist{ID: a.ID, Name: a.Name})
		}
	}

	return result, nil
}

// SearchTracks performs a track search with the given query string.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	result, err := s.Search(ctx, query, "track", limit)
	if err != nil {
		return nil, err
	}
	return result.Tracks, nil
}

// SearchArtists searches for artists by name.
func (s *SpotifyService) SearchArtists(ctx context.Context, name string, limit int) ([]Artist, error) {
	result, err := s.Search(ctx, name, "artist", limit)
	if err != nil {
		return nil, err
	}
	return result.Artists, nil
}

// ArtistTopTracks returns the most popular tracks for the given artist ID.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: missing artist id", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/artists/%s/top-tracks", url.PathEscape(artistID))
	if s.market != "" {
		endpoint += "?market=" + url.QueryEscape(s.market)
	}

	var response SpotifyTopTracksResponse
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return mapTracks(response.Tracks), nil
}

// mapTracks converts Spotify API track objects to collaborator tracks.
func mapTracks(items []SpotifyTrack) []Track {
	tracks := make([]Track, 0, len(items))
	for _, t := range items {
		track := Track{
			ID:         t.ID,
			Title:      t.Name,
			Popularity: t.Popularity,
		}
		for _, a := range t.Artists {
			track.Artists = append(track.Artists, a.Name)
		}
		tracks = append(tracks, track)
	}
	return tracks
}
