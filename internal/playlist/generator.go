package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
)

const (
	minSeeds           = 5
	maxSeeds           = 12
	smallSeedThreshold = 7
	hardMaxTarget      = 60
)

// Options carries the generation tuning that used to live in process-wide
// globals: target-size bounds, fairness knobs, and verification policy.
type Options struct {
	TargetMin          int     // hard minimum playlist size
	TargetSmallMax     int     // default target for <= 7 seeds
	TargetLargeMax     int     // default target for > 7 seeds
	MinArtists         int     // required distinct artists among normalized seeds
	MaxConsecutive     int     // same-artist run bound for sequencing
	PerArtistBuffer    int     // extra inventory fetched per artist beyond target
	Verify             bool    // catalog-verify suggestion-sourced candidates
	SuggestionAttempts int     // bounded retry count against the suggestion service
	Workers            int     // bounded concurrency for fetches and verification
	RatePerSec         float64 // shared catalog call budget
}

// withDefaults fills zero values with the documented defaults.
func (o Options) withDefaults() Options {
	if o.TargetMin <= 0 {
		o.TargetMin = 20
	}
	if o.TargetSmallMax <= 0 {
		o.TargetSmallMax = 32
	}
	if o.TargetLargeMax <= 0 {
		o.TargetLargeMax = 42
	}
	if o.MinArtists <= 0 {
		o.MinArtists = 5
	}
	if o.MaxConsecutive <= 0 {
		o.MaxConsecutive = 2
	}
	if o.PerArtistBuffer <= 0 {
		o.PerArtistBuffer = 30
	}
	if o.SuggestionAttempts <= 0 {
		o.SuggestionAttempts = 3
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = 10
	}
	return o
}

// Request is one generation request: raw seed lines plus optional per-request
// tuning, both clamped to bounded ranges.
type Request struct {
	Songs          []string
	DesiredTotal   int // 0 = derive from seed count
	DesiredArtists int // 0 = use configured minimum
}

// Result is the finished playlist plus fulfillment metadata. Under-fulfillment
// is not an error: a starved pool yields a smaller Count with a Warning.
type Result struct {
	Songs       []Song
	Count       int
	TargetTotal int
	Success     bool
	Warning     string
}

// Text renders the playlist as newline-joined "Title - Artist" lines.
func (r *Result) Text() string {
	lines := make([]string, len(r.Songs))
	for i, s := range r.Songs {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// Generator runs the full candidate-generation and balancing pipeline.
// The suggester is optional; when nil the catalog is the only source.
type Generator struct {
	catalog   services.Catalog
	suggester services.Suggester
	logger    *log.Logger
	opts      Options

	normalizer *Normalizer
	pool       *PoolBuilder
	verifier   *Verifier
	suggest    *SuggestionSource
}

// NewGenerator creates a Generator with the given collaborators.
func NewGenerator(catalog services.Catalog, suggester services.Suggester, logger *log.Logger, opts Options) *Generator {
	opts = opts.withDefaults()

	g := &Generator{
		catalog:   catalog,
		suggester: suggester,
		logger:    logger,
		opts:      opts,

		normalizer: NewNormalizer(catalog, logger),
		pool:       NewPoolBuilder(catalog, logger, opts.Workers, opts.RatePerSec),
		verifier:   NewVerifier(catalog, logger, opts.Workers, opts.RatePerSec),
	}
	if suggester != nil {
		g.suggest = NewSuggestionSource(suggester, logger)
	}
	return g
}

// Generate expands the request's seed songs into a balanced playlist.
//
// Validation errors (seed count, distinct artists) and catalog/auth failures
// during seed normalization abort the request; everything downstream degrades
// to a smaller result instead of failing.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	seedsRaw := make([]string, 0, len(req.Songs))
	for _, line := range req.Songs {
		if line = strings.TrimSpace(line); line != "" {
			seedsRaw = append(seedsRaw, line)
		}
	}

	if len(seedsRaw) < minSeeds || len(seedsRaw) > maxSeeds {
		return nil, fmt.Errorf("%w: got %d", shared.ErrSeedCount, len(seedsRaw))
	}

	seeds, artists, err := g.normalizeSeeds(ctx, seedsRaw)
	if err != nil {
		return nil, err
	}

	minArtists := clampArtists(req.DesiredArtists, g.opts.MinArtists)
	if len(artists) < minArtists {
		return nil, fmt.Errorf("%w: got %d", shared.ErrTooFewArtists, len(artists))
	}

	target := g.resolveTarget(len(seedsRaw), req.DesiredTotal)
	g.logger.Info("building playlist", "seeds", len(seeds), "artists", len(artists), "target", target)

	pool := g.pool.Build(ctx, seeds, target, g.opts.PerArtistBuffer)

	if g.suggest != nil && pool.Inventory() < target {
		g.topUpFromSuggestions(ctx, pool, seeds, target)
	}

	quotas := Allocate(pool.Order, pool.Buckets, SeedCounts(seeds), target)
	sequence := Sequence(pool.Order, pool.Buckets, quotas, g.opts.MaxConsecutive)
	final := EnsureSeeds(sequence, seeds, target)

	result := &Result{
		Songs:       final,
		Count:       len(final),
		TargetTotal: target,
		Success:     len(final) >= target,
	}
	if !result.Success {
		result.Warning = fmt.Sprintf("found %d of %d requested songs", result.Count, target)
		g.logger.Warn("playlist under-fulfilled", "count", result.Count, "target", target)
	}

	return result, nil
}

// normalizeSeeds resolves raw lines to canonical songs, dropping unusable
// seeds and de-duplicating by canonical key while preserving input order.
// Returns the distinct artist keys alongside the seeds.
func (g *Generator) normalizeSeeds(ctx context.Context, seedsRaw []string) ([]Song, map[string]bool, error) {
	var seeds []Song
	seen := make(map[string]bool)
	artists := make(map[string]bool)

	for _, raw := range seedsRaw {
		song, ok, err := g.normalizer.Normalize(ctx, raw)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			g.logger.Warn("dropping unusable seed", "seed", raw)
			continue
		}
		if seen[song.Key()] {
			continue
		}
		seen[song.Key()] = true
		seeds = append(seeds, song)
		artists[fold(song.Artist)] = true
	}

	return seeds, artists, nil
}

// topUpFromSuggestions fills the remaining pool inventory from the suggestion
// service, re-parsing and (when enabled) catalog-verifying every candidate
// before admission.
func (g *Generator) topUpFromSuggestions(ctx context.Context, pool *Pool, seeds []Song, target int) {
	need := target - pool.Inventory()

	exclude := make(map[string]bool, len(pool.Seen))
	for k := range pool.Seen {
		exclude[k] = true
	}

	suggested := g.suggest.Suggest(ctx, seeds, need, g.opts.SuggestionAttempts, exclude)
	if len(suggested) == 0 {
		return
	}

	kept := suggested
	if g.opts.Verify {
		accepted := g.verifier.VerifyBatch(ctx, suggested)
		kept = kept[:0]
		for i, ok := range accepted {
			if ok {
				kept = append(kept, suggested[i])
			}
		}
	}

	added := 0
	for _, song := range kept {
		if pool.Add(song) {
			added++
		}
	}

	g.logger.Info("suggestion top-up", "suggested", len(suggested), "verified", len(kept), "added", added)
}

// resolveTarget clamps an explicit desired total or derives a default from
// the seed count: fewer seeds get the smaller band.
func (g *Generator) resolveTarget(seedCount, desired int) int {
	if desired > 0 {
		return min(max(desired, g.opts.TargetMin), hardMaxTarget)
	}

	target := g.opts.TargetLargeMax
	if seedCount <= smallSeedThreshold {
		target = g.opts.TargetSmallMax
	}
	return max(target, g.opts.TargetMin)
}

// clampArtists bounds the per-request distinct-artist requirement.
func clampArtists(desired, fallback int) int {
	if desired <= 0 {
		return fallback
	}
	return min(max(desired, 2), maxSeeds)
}
