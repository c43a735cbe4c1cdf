package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
	tu "github.com/desertthunder/seedmix/internal/testing"
)

// fullCatalog fakes every catalog endpoint against a fixed artist -> tracks
// map: artist search, top tracks, artist-scoped enumeration, and quoted or
// free-text title lookups.
func fullCatalog(byArtist map[string][]services.Track) *tu.MockCatalog {
	var all []services.Track
	for _, tracks := range byArtist {
		all = append(all, tracks...)
	}

	return &tu.MockCatalog{
		SearchArtistsFunc: func(ctx context.Context, name string, limit int) ([]services.Artist, error) {
			if _, ok := byArtist[name]; !ok {
				return nil, nil
			}
			return []services.Artist{{ID: "id-" + name, Name: name}}, nil
		},
		ArtistTopTracksFunc: func(ctx context.Context, artistID string) ([]services.Track, error) {
			return byArtist[strings.TrimPrefix(artistID, "id-")], nil
		},
		SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
			if !strings.Contains(query, "track:") {
				for name, tracks := range byArtist {
					if strings.Contains(query, fmt.Sprintf("artist:%q", name)) {
						return tracks, nil
					}
				}
			}

			var hits []services.Track
			for _, tr := range all {
				if strings.Contains(query, tr.Title) {
					hits = append(hits, tr)
				}
			}
			return hits, nil
		},
	}
}

// roster builds n artists with m tracks each and returns the track map plus
// one seed line per artist.
func roster(n, m int) (map[string][]services.Track, []string) {
	byArtist := make(map[string][]services.Track, n)
	var seedLines []string
	for i := 0; i < n; i++ {
		artist := fmt.Sprintf("Artist%c", 'A'+i)
		byArtist[artist] = artistTracks(artist, m)
		seedLines = append(seedLines, fmt.Sprintf("%s Song 0 - %s", artist, artist))
	}
	return byArtist, seedLines
}

func fastOpts() Options {
	return Options{Workers: 2, RatePerSec: 1000}
}

func TestGenerate(t *testing.T) {
	logger := shared.NewLogger(nil)

	t.Run("Balanced Playlist From Five Seeds", func(t *testing.T) {
		byArtist, seedLines := roster(5, 20)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		result, err := g.Generate(context.Background(), Request{Songs: seedLines, DesiredTotal: 25})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Count != 25 || !result.Success {
			t.Errorf("expected 25 songs and success, got %d (success=%v)", result.Count, result.Success)
		}
		if result.TargetTotal != 25 {
			t.Errorf("expected target 25, got %d", result.TargetTotal)
		}

		seen := map[string]bool{}
		perArtist := map[string]int{}
		for _, s := range result.Songs {
			if seen[s.Key()] {
				t.Errorf("duplicate song in playlist: %v", s)
			}
			seen[s.Key()] = true
			perArtist[s.Artist]++
		}

		for _, line := range seedLines {
			seed, _ := ParseLine(line)
			if !seen[seed.Key()] {
				t.Errorf("seed missing from playlist: %v", seed)
			}
		}

		for artist, count := range perArtist {
			if count < 4 || count > 6 {
				t.Errorf("artist %s has %d songs, expected a near-even share", artist, count)
			}
		}
	})

	t.Run("Seed Count Bounds", func(t *testing.T) {
		byArtist, seedLines := roster(12, 5)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		_, err := g.Generate(context.Background(), Request{Songs: seedLines[:4]})
		if !errors.Is(err, shared.ErrSeedCount) {
			t.Errorf("expected ErrSeedCount for 4 seeds, got %v", err)
		}

		thirteen := append(append([]string{}, seedLines...), "Extra Song - ArtistA")
		_, err = g.Generate(context.Background(), Request{Songs: thirteen})
		if !errors.Is(err, shared.ErrSeedCount) {
			t.Errorf("expected ErrSeedCount for 13 seeds, got %v", err)
		}
	})

	t.Run("Blank Lines Do Not Count As Seeds", func(t *testing.T) {
		byArtist, seedLines := roster(5, 5)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		padded := append([]string{"", "   "}, seedLines[:4]...)
		_, err := g.Generate(context.Background(), Request{Songs: padded})
		if !errors.Is(err, shared.ErrSeedCount) {
			t.Errorf("expected ErrSeedCount, got %v", err)
		}
	})

	t.Run("Too Few Distinct Artists", func(t *testing.T) {
		byArtist, _ := roster(4, 10)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		var seedLines []string
		for artist := range byArtist {
			seedLines = append(seedLines, fmt.Sprintf("%s Song 0 - %s", artist, artist))
		}
		seedLines = append(seedLines, "ArtistA Song 1 - ArtistA")

		_, err := g.Generate(context.Background(), Request{Songs: seedLines})
		if !errors.Is(err, shared.ErrTooFewArtists) {
			t.Errorf("expected ErrTooFewArtists, got %v", err)
		}
	})

	t.Run("Desired Artists Overrides Minimum", func(t *testing.T) {
		byArtist, _ := roster(3, 20)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		seedLines := []string{
			"ArtistA Song 0 - ArtistA",
			"ArtistA Song 1 - ArtistA",
			"ArtistB Song 0 - ArtistB",
			"ArtistB Song 1 - ArtistB",
			"ArtistC Song 0 - ArtistC",
		}

		result, err := g.Generate(context.Background(), Request{Songs: seedLines, DesiredArtists: 3, DesiredTotal: 20})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Success {
			t.Errorf("expected success, got warning %q", result.Warning)
		}
	})

	t.Run("Unresolvable Seed Is Dropped", func(t *testing.T) {
		byArtist, seedLines := roster(4, 10)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		// Five raw lines pass the count check, but one resolves to nothing
		// and only four artists remain.
		lines := append(append([]string{}, seedLines...), "Nonexistent Tune - Ghost Band")

		_, err := g.Generate(context.Background(), Request{Songs: lines})
		if !errors.Is(err, shared.ErrTooFewArtists) {
			t.Errorf("expected ErrTooFewArtists after drop, got %v", err)
		}
	})

	t.Run("Duplicate Seeds Collapse", func(t *testing.T) {
		byArtist, seedLines := roster(5, 20)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		lines := append(append([]string{}, seedLines...), strings.ToUpper(seedLines[0]))

		result, err := g.Generate(context.Background(), Request{Songs: lines, DesiredTotal: 20})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		seen := map[string]bool{}
		for _, s := range result.Songs {
			if seen[s.Key()] {
				t.Errorf("duplicate song in playlist: %v", s)
			}
			seen[s.Key()] = true
		}
	})

	t.Run("Starved Pool Warns Instead Of Failing", func(t *testing.T) {
		byArtist, seedLines := roster(5, 2)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		result, err := g.Generate(context.Background(), Request{Songs: seedLines, DesiredTotal: 20})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Success {
			t.Error("expected under-fulfilled result")
		}
		if result.Count != 10 {
			t.Errorf("expected 10 songs from starved pool, got %d", result.Count)
		}
		if result.Warning != "found 10 of 20 requested songs" {
			t.Errorf("unexpected warning: %q", result.Warning)
		}
	})

	t.Run("Target Defaults", func(t *testing.T) {
		byArtist, seedLines := roster(10, 3)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		result, err := g.Generate(context.Background(), Request{Songs: seedLines[:5]})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.TargetTotal != 32 {
			t.Errorf("expected default target 32 for 5 seeds, got %d", result.TargetTotal)
		}

		result, err = g.Generate(context.Background(), Request{Songs: seedLines})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.TargetTotal != 42 {
			t.Errorf("expected default target 42 for 10 seeds, got %d", result.TargetTotal)
		}
	})

	t.Run("Desired Total Is Clamped", func(t *testing.T) {
		byArtist, seedLines := roster(5, 3)
		g := NewGenerator(fullCatalog(byArtist), nil, logger, fastOpts())

		result, err := g.Generate(context.Background(), Request{Songs: seedLines, DesiredTotal: 5})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.TargetTotal != 20 {
			t.Errorf("expected floor of 20, got %d", result.TargetTotal)
		}

		result, err = g.Generate(context.Background(), Request{Songs: seedLines, DesiredTotal: 500})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.TargetTotal != 60 {
			t.Errorf("expected cap of 60, got %d", result.TargetTotal)
		}
	})

	t.Run("Suggestions Fill A Short Pool", func(t *testing.T) {
		byArtist, seedLines := roster(5, 2)
		// Extra catalog artist the suggester will draw from; never a seed,
		// so the pool only sees it through suggestions.
		byArtist["Zeta"] = artistTracks("Zeta", 15)

		var suggestion strings.Builder
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&suggestion, "Zeta Song %d - Zeta\n", i)
		}

		suggester := &tu.MockSuggester{
			CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
				return suggestion.String(), nil
			},
		}

		opts := fastOpts()
		opts.Verify = true
		g := NewGenerator(fullCatalog(byArtist), suggester, logger, opts)

		result, err := g.Generate(context.Background(), Request{Songs: seedLines, DesiredTotal: 20})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if suggester.Calls == 0 {
			t.Error("expected the suggester to be consulted")
		}
		if !result.Success {
			t.Errorf("expected suggestions to reach the target, got %d of %d", result.Count, result.TargetTotal)
		}

		zeta := 0
		for _, s := range result.Songs {
			if s.Artist == "Zeta" {
				zeta++
			}
		}
		if zeta == 0 {
			t.Error("expected suggested songs in the playlist")
		}
	})

	t.Run("Fabricated Suggestions Are Rejected", func(t *testing.T) {
		byArtist, seedLines := roster(5, 2)

		suggester := &tu.MockSuggester{
			CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
				return "Totally Made Up - Ghost Band\nAnother Fake - Ghost Band", nil
			},
		}

		opts := fastOpts()
		opts.Verify = true
		g := NewGenerator(fullCatalog(byArtist), suggester, logger, opts)

		result, err := g.Generate(context.Background(), Request{Songs: seedLines, DesiredTotal: 20})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for _, s := range result.Songs {
			if s.Artist == "Ghost Band" {
				t.Errorf("fabricated suggestion leaked into playlist: %v", s)
			}
		}
		if result.Success {
			t.Error("expected under-fulfilled result when suggestions fail verification")
		}
	})

	t.Run("Catalog Failure During Normalization Aborts", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				return nil, shared.ErrAPIRequest
			},
		}
		g := NewGenerator(catalog, nil, logger, fastOpts())

		_, seedLines := roster(5, 1)
		_, err := g.Generate(context.Background(), Request{Songs: seedLines})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected catalog error to propagate, got %v", err)
		}
	})
}

func TestResultText(t *testing.T) {
	result := &Result{
		Songs: []Song{
			{Title: "One", Artist: "A"},
			{Title: "Two", Artist: "B"},
		},
	}
	if result.Text() != "One - A\nTwo - B" {
		t.Errorf("unexpected text: %q", result.Text())
	}
}
