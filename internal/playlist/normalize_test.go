package playlist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
	tu "github.com/desertthunder/seedmix/internal/testing"
)

func TestNormalize(t *testing.T) {
	logger := shared.NewLogger(nil)

	t.Run("Canonical Spelling Wins", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				return []services.Track{
					{ID: "1", Title: "Bohemian Rhapsody", Artists: []string{"Queen"}, Popularity: 90},
				}, nil
			},
		}
		n := NewNormalizer(catalog, logger)

		song, ok, err := n.Normalize(context.Background(), "bohemian rhapsody - queen")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatal("expected seed to resolve")
		}
		if song.Title != "Bohemian Rhapsody" || song.Artist != "Queen" {
			t.Errorf("expected canonical spelling, got %+v", song)
		}
	})

	t.Run("Prefers Credited Artist Match Over Top Hit", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				return []services.Track{
					{ID: "cover", Title: "Hallelujah", Artists: []string{"Somebody Else"}, Popularity: 95},
					{ID: "orig", Title: "Hallelujah", Artists: []string{"Leonard Cohen"}, Popularity: 70},
				}, nil
			},
		}
		n := NewNormalizer(catalog, logger)

		song, ok, err := n.Normalize(context.Background(), "Hallelujah - Leonard Cohen")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatal("expected seed to resolve")
		}
		if song.Artist != "Leonard Cohen" {
			t.Errorf("expected credited match, got %+v", song)
		}
	})

	t.Run("Swapped Title And Artist", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				// Only the swapped-field query shape finds the track.
				if !strings.Contains(query, `track:"Creep"`) {
					return nil, nil
				}
				return []services.Track{
					{ID: "1", Title: "Creep", Artists: []string{"Radiohead"}, Popularity: 80},
				}, nil
			},
		}
		n := NewNormalizer(catalog, logger)

		song, ok, err := n.Normalize(context.Background(), "Radiohead - Creep")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatal("expected seed to resolve")
		}
		if song.Title != "Creep" || song.Artist != "Radiohead" {
			t.Errorf("expected swap correction, got %+v", song)
		}
	})

	t.Run("Unparseable Line Uses Loose Search", func(t *testing.T) {
		var looseQuery string
		catalog := &tu.MockCatalog{
			SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				looseQuery = query
				return []services.Track{
					{ID: "1", Title: "Imagine", Artists: []string{"John Lennon"}, Popularity: 85},
				}, nil
			},
		}
		n := NewNormalizer(catalog, logger)

		song, ok, err := n.Normalize(context.Background(), "imagine john lennon")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatal("expected seed to resolve")
		}
		if song.Title != "Imagine" {
			t.Errorf("expected loose match, got %+v", song)
		}
		if looseQuery != "imagine john lennon" {
			t.Errorf("expected raw loose query, got %q", looseQuery)
		}
	})

	t.Run("Zero Results Drops Seed", func(t *testing.T) {
		catalog := &tu.MockCatalog{}
		n := NewNormalizer(catalog, logger)

		_, ok, err := n.Normalize(context.Background(), "Nonexistent Song - Nobody")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected seed to be dropped")
		}
	})

	t.Run("Catalog Error Is Fatal", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
				return nil, errors.New("boom")
			},
		}
		n := NewNormalizer(catalog, logger)

		_, _, err := n.Normalize(context.Background(), "Song - Artist")
		if err == nil {
			t.Error("expected catalog error to propagate")
		}
	})
}
