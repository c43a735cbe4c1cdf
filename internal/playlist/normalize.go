package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/services"
)

// Normalizer resolves raw seed lines against the catalog, rewriting each
// usable seed to the catalog's canonical title and primary-artist spelling.
// This corrects swapped title/artist order, casing, and minor typos.
type Normalizer struct {
	catalog services.Catalog
	logger  *log.Logger
}

// NewNormalizer creates a Normalizer backed by the given catalog.
func NewNormalizer(catalog services.Catalog, logger *log.Logger) *Normalizer {
	return &Normalizer{catalog: catalog, logger: logger}
}

// Normalize resolves one raw seed line. The second return value is false when
// the seed is unusable (unparseable with no loose match, or zero catalog
// results); such seeds are dropped and never kept verbatim, so distinct-artist
// validation only counts catalog-resolved seeds. Catalog errors are returned
// as-is: seed normalization requires the catalog and is not resilient to its
// unavailability.
func (n *Normalizer) Normalize(ctx context.Context, raw string) (Song, bool, error) {
	if pair, ok := ParseLine(raw); ok {
		hit, err := n.searchFlexible(ctx, pair.Title, pair.Artist)
		if err != nil {
			return Song{}, false, err
		}
		if hit != nil {
			return canonicalSong(*hit, pair), true, nil
		}
	}

	// Loose fallback: treat the whole line as free text.
	loose := strings.Map(func(r rune) rune {
		if isDash(r) {
			return ' '
		}
		return r
	}, raw)

	tracks, err := n.catalog.SearchTracks(ctx, loose, 5)
	if err != nil {
		return Song{}, false, fmt.Errorf("seed search failed: %w", err)
	}
	if len(tracks) == 0 {
		n.logger.Warn("seed not found in catalog", "seed", raw)
		return Song{}, false, nil
	}

	top := tracks[0]
	if top.PrimaryArtist() == "" {
		return Song{}, false, nil
	}
	return Song{Title: top.Title, Artist: top.PrimaryArtist()}, true, nil
}

// searchFlexible issues several query shapes to tolerate a user writing
// "Artist - Title" instead of "Title - Artist". Prefers a hit whose credited
// artists contain a case-insensitive match of the supplied artist, otherwise
// the top search result.
func (n *Normalizer) searchFlexible(ctx context.Context, title, artist string) (*services.Track, error) {
	queries := []string{
		fmt.Sprintf("track:%q artist:%q", title, artist),
		fmt.Sprintf("track:%q artist:%q", artist, title),
		fmt.Sprintf("%q %q", title, artist),
		fmt.Sprintf("%s %s", title, artist),
	}

	for _, q := range queries {
		tracks, err := n.catalog.SearchTracks(ctx, q, 5)
		if err != nil {
			return nil, fmt.Errorf("seed search failed: %w", err)
		}
		if len(tracks) == 0 {
			continue
		}

		for i, tr := range tracks {
			for _, credit := range tr.Artists {
				if foldEqual(credit, artist) || foldEqual(credit, title) {
					return &tracks[i], nil
				}
			}
		}
		return &tracks[0], nil
	}

	return nil, nil
}

// canonicalSong maps a catalog hit back to a Song, falling back to the parsed
// pair when the catalog omits a field.
func canonicalSong(hit services.Track, parsed Song) Song {
	song := Song{Title: hit.Title, Artist: hit.PrimaryArtist()}
	if song.Title == "" {
		song.Title = parsed.Title
	}
	if song.Artist == "" {
		song.Artist = parsed.Artist
	}
	return song
}
