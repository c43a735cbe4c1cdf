// package services defines clients for the external collaborators of the
// playlist pipeline
//
// Spotify (catalog search), Anthropic (text suggestions)
package services

import (
	"context"
)

// Catalog defines the music catalog operations the playlist pipeline consumes.
// Implementations resolve free-text queries against an external music database
// with popularity-ranked results.
type Catalog interface {
	// SearchTracks performs a track search with the given query string.
	// The query may use field filters such as track:"..." and artist:"...".
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)

	// SearchArtists searches for artists by name.
	SearchArtists(ctx context.Context, name string, limit int) ([]Artist, error)

	// ArtistTopTracks returns the catalog's most popular tracks for an artist.
	ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error)
}

// Suggester defines the text-completion collaborator used as an additional
// candidate source. Output is freeform text and must be treated as untrusted.
type Suggester interface {
	// Complete sends a system and user prompt and returns the completion text.
	Complete(ctx context.Context, system, user string) (string, error)
}

// Track represents a catalog track with credited artists and popularity score.
type Track struct {
	ID         string
	Title      string
	Artists    []string // credited artist names, primary first
	Popularity int
}

// PrimaryArtist returns the first credited artist, or an empty string.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Artist represents a catalog artist.
type Artist struct {
	ID   string
	Name string
}

// SearchResult holds a combined artist/track search response for typeahead use.
type SearchResult struct {
	Artists []Artist
	Tracks  []Track
}
