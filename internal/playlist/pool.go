package playlist

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/services"
	"golang.org/x/time/rate"
)

// Pool holds the per-artist candidate buckets built for one request.
//
// Order is fixed by first appearance among the normalized seeds and never by
// map iteration or fetch completion, so output is reproducible from input.
type Pool struct {
	Order   []string          // folded artist keys in first-seed-appearance order
	Display map[string]string // folded key -> canonical display name
	Buckets map[string][]Song // folded key -> seeds-first, popularity-sorted candidates
	Seen    map[string]bool   // canonical song keys across every bucket
}

// newPool creates an empty pool.
func newPool() *Pool {
	return &Pool{
		Display: make(map[string]string),
		Buckets: make(map[string][]Song),
		Seen:    make(map[string]bool),
	}
}

// Add appends a song to its artist's bucket unless its canonical key has been
// seen. Unknown artists get a new bucket appended to the iteration order.
// Reports whether the song was added.
func (p *Pool) Add(song Song) bool {
	key := song.Key()
	if p.Seen[key] {
		return false
	}

	artistKey := fold(song.Artist)
	if _, ok := p.Display[artistKey]; !ok {
		p.Display[artistKey] = song.Artist
		p.Order = append(p.Order, artistKey)
	}

	p.Seen[key] = true
	p.Buckets[artistKey] = append(p.Buckets[artistKey], song)
	return true
}

// Inventory returns the total number of candidates across all buckets.
func (p *Pool) Inventory() int {
	total := 0
	for _, bucket := range p.Buckets {
		total += len(bucket)
	}
	return total
}

// SeedCounts returns the number of seeds per artist key for the given seeds.
func SeedCounts(seeds []Song) map[string]int {
	counts := make(map[string]int)
	for _, s := range seeds {
		counts[fold(s.Artist)]++
	}
	return counts
}

// PoolBuilder fetches popularity-sorted candidate tracks per seed artist.
//
// Per-artist fetches run on a bounded worker pool behind a shared rate
// limiter; merge order stays deterministic because results are applied in
// artist order after all fetches complete.
type PoolBuilder struct {
	catalog services.Catalog
	logger  *log.Logger
	limiter *rate.Limiter
	workers int
}

// NewPoolBuilder creates a PoolBuilder. Workers are clamped to [1, 8];
// ratePerSec bounds catalog calls per second across all workers.
func NewPoolBuilder(catalog services.Catalog, logger *log.Logger, workers int, ratePerSec float64) *PoolBuilder {
	if workers <= 0 {
		workers = 4
	}
	if workers > 8 {
		workers = 8
	}
	if ratePerSec <= 0 {
		ratePerSec = 10
	}

	return &PoolBuilder{
		catalog: catalog,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
		workers: workers,
	}
}

// Build constructs the candidate pool for the normalized seeds. Buckets start
// with each artist's seeds, then gain catalog candidates up to target+buffer
// per artist. A failed fetch for one artist never aborts the pool: that
// bucket keeps whatever was gathered, possibly just its seeds.
func (b *PoolBuilder) Build(ctx context.Context, seeds []Song, target, buffer int) *Pool {
	pool := newPool()
	for _, seed := range seeds {
		pool.Add(seed)
	}

	bucketCap := target + buffer
	fetched := make([][]services.Track, len(pool.Order))

	jobs := make(chan int, len(pool.Order))
	var wg sync.WaitGroup

	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fetched[i] = b.fetchArtist(ctx, pool.Display[pool.Order[i]], bucketCap)
			}
		}()
	}

	for i := range pool.Order {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Merge in artist order so the dedup set is applied deterministically.
	for i, artistKey := range pool.Order {
		for _, tr := range fetched[i] {
			if len(pool.Buckets[artistKey]) >= bucketCap {
				break
			}
			song := Song{Title: tr.Title, Artist: tr.PrimaryArtist()}
			if song.Title == "" || song.Artist == "" {
				continue
			}
			if pool.Seen[song.Key()] {
				continue
			}
			pool.Seen[song.Key()] = true
			pool.Buckets[artistKey] = append(pool.Buckets[artistKey], song)
		}
	}

	return pool
}

// fetchArtist gathers candidate tracks for one artist: an artist-scoped top
// tracks lookup when the artist resolves, merged with a general track search
// on the artist name, filtered to credited-artist matches and sorted by
// descending popularity.
func (b *PoolBuilder) fetchArtist(ctx context.Context, name string, limit int) []services.Track {
	var merged []services.Track

	if id := b.resolveArtistID(ctx, name); id != "" {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil
		}
		top, err := b.catalog.ArtistTopTracks(ctx, id)
		if err != nil {
			b.logger.Warn("top tracks fetch failed", "artist", name, "err", err)
		} else {
			merged = append(merged, top...)
		}
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return merged
	}
	found, err := b.catalog.SearchTracks(ctx, fmt.Sprintf("artist:%q", name), 50)
	if err != nil {
		b.logger.Warn("artist track search failed", "artist", name, "err", err)
	} else {
		merged = append(merged, found...)
	}

	filtered := merged[:0]
	trackSeen := make(map[string]bool, len(merged))
	for _, tr := range merged {
		if !creditedTo(tr, name) {
			continue
		}
		key := Key(tr.Title, tr.PrimaryArtist())
		if trackSeen[key] {
			continue
		}
		trackSeen[key] = true
		filtered = append(filtered, tr)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Popularity > filtered[j].Popularity
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// resolveArtistID finds the catalog artist ID for a name, preferring an exact
// case-insensitive match over the top hit. Returns "" when unresolved.
func (b *PoolBuilder) resolveArtistID(ctx context.Context, name string) string {
	if err := b.limiter.Wait(ctx); err != nil {
		return ""
	}

	artists, err := b.catalog.SearchArtists(ctx, name, 3)
	if err != nil {
		b.logger.Warn("artist search failed", "artist", name, "err", err)
		return ""
	}
	if len(artists) == 0 {
		return ""
	}

	for _, a := range artists {
		if foldEqual(a.Name, name) {
			return a.ID
		}
	}
	return artists[0].ID
}

// creditedTo reports whether any credited artist on the track matches the
// target artist name case-insensitively.
func creditedTo(tr services.Track, name string) bool {
	for _, credit := range tr.Artists {
		if foldEqual(credit, name) {
			return true
		}
	}
	return false
}
