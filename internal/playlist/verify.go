package playlist

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/services"
	"golang.org/x/time/rate"
)

// Verifier confirms that a candidate (title, artist) actually exists in the
// catalog. Required for candidates originating from the text-suggestion
// service, whose output is untrusted free text.
type Verifier struct {
	catalog services.Catalog
	logger  *log.Logger
	limiter *rate.Limiter
	workers int
}

// NewVerifier creates a Verifier sharing the pipeline's rate limits.
func NewVerifier(catalog services.Catalog, logger *log.Logger, workers int, ratePerSec float64) *Verifier {
	if workers <= 0 {
		workers = 4
	}
	if workers > 8 {
		workers = 8
	}
	if ratePerSec <= 0 {
		ratePerSec = 10
	}

	return &Verifier{
		catalog: catalog,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
		workers: workers,
	}
}

// Verify checks one candidate against the catalog. A strict title+artist
// query is tried first and accepted only on an exact (case/diacritic folded)
// title match with a matching artist credit. Failing that, a title-only
// search accepts substring matches in either direction. Lookup errors reject
// the single candidate without aborting anything else.
func (v *Verifier) Verify(ctx context.Context, song Song) bool {
	if err := v.limiter.Wait(ctx); err != nil {
		return false
	}

	strict := fmt.Sprintf("track:%q artist:%q", song.Title, song.Artist)
	tracks, err := v.catalog.SearchTracks(ctx, strict, 5)
	if err != nil {
		v.logger.Warn("verification lookup failed", "song", song.String(), "err", err)
		return false
	}

	for _, tr := range tracks {
		if foldEqual(tr.Title, song.Title) && artistCreditMatches(tr, song.Artist) {
			return true
		}
	}

	if err := v.limiter.Wait(ctx); err != nil {
		return false
	}

	tracks, err = v.catalog.SearchTracks(ctx, song.Title, 10)
	if err != nil {
		v.logger.Warn("verification fallback failed", "song", song.String(), "err", err)
		return false
	}

	for _, tr := range tracks {
		if containsEither(tr.Title, song.Title) && artistCreditMatches(tr, song.Artist) {
			return true
		}
	}

	return false
}

// VerifyBatch verifies candidates with bounded concurrency, preserving input
// order in the returned acceptance flags.
func (v *Verifier) VerifyBatch(ctx context.Context, songs []Song) []bool {
	results := make([]bool, len(songs))

	jobs := make(chan int, len(songs))
	var wg sync.WaitGroup

	for w := 0; w < v.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results[i] = v.Verify(ctx, songs[i])
			}
		}()
	}

	for i := range songs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// artistCreditMatches reports whether some credited artist matches the target
// exactly or by substring containment in either direction (folded).
func artistCreditMatches(tr services.Track, artist string) bool {
	want := fold(artist)
	for _, credit := range tr.Artists {
		got := fold(credit)
		if got == want || strings.Contains(got, want) || strings.Contains(want, got) {
			return true
		}
	}
	return false
}

// containsEither reports folded substring containment in either direction.
func containsEither(a, b string) bool {
	fa, fb := fold(a), fold(b)
	return strings.Contains(fa, fb) || strings.Contains(fb, fa)
}
