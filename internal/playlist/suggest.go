package playlist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/services"
)

const suggestSystemPrompt = `You are a music recommendation assistant. The user gives you a list of seed songs and you suggest additional real, existing songs that match the seeds' genres, languages, and era.
Respond ONLY with suggestions, one per line, in the exact format: Title - Artist
No numbering, no commentary, no markdown.`

// SuggestionSource produces additional candidates from the text-completion
// service when catalog enumeration leaves the pool short. Output is treated
// as adversarial: every line is re-parsed, and callers re-verify candidates
// against the catalog before accepting them.
type SuggestionSource struct {
	suggester services.Suggester
	logger    *log.Logger
}

// NewSuggestionSource creates a SuggestionSource.
func NewSuggestionSource(suggester services.Suggester, logger *log.Logger) *SuggestionSource {
	return &SuggestionSource{suggester: suggester, logger: logger}
}

// Suggest asks the completion service for up to need candidates over at most
// maxAttempts rounds, threading an explicit exclusion set through each
// attempt so follow-up prompts avoid already-used titles. Exclude is mutated
// as candidates are accepted. A failed attempt is logged and counted, never
// fatal.
func (s *SuggestionSource) Suggest(ctx context.Context, seeds []Song, need, maxAttempts int, exclude map[string]bool) []Song {
	if need <= 0 || s.suggester == nil {
		return nil
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var collected []Song
	for attempt := 0; attempt < maxAttempts && len(collected) < need; attempt++ {
		prompt := buildSuggestPrompt(seeds, need-len(collected), exclude)

		text, err := s.suggester.Complete(ctx, suggestSystemPrompt, prompt)
		if err != nil {
			s.logger.Warn("suggestion attempt failed", "attempt", attempt+1, "err", err)
			continue
		}

		accepted := 0
		for _, line := range SplitLines(text) {
			song, ok := ParseLine(line)
			if !ok {
				continue
			}
			if exclude[song.Key()] {
				continue
			}
			exclude[song.Key()] = true
			collected = append(collected, song)
			accepted++
			if len(collected) >= need {
				break
			}
		}

		s.logger.Debug("suggestion attempt", "attempt", attempt+1, "accepted", accepted)
	}

	return collected
}

// buildSuggestPrompt renders the user prompt with seeds, the requested count,
// and the titles to avoid.
func buildSuggestPrompt(seeds []Song, need int, exclude map[string]bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Seed songs:\n")
	for _, seed := range seeds {
		sb.WriteString(seed.String())
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "\nSuggest %d more songs in the same style.\n", need)

	if len(exclude) > 0 {
		keys := make([]string, 0, len(exclude))
		for key := range exclude {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		sb.WriteString("Do not suggest any of these (already used):\n")
		for _, key := range keys {
			title, artist, found := strings.Cut(key, keyDelimiter)
			if !found {
				continue
			}
			sb.WriteString(title)
			sb.WriteString(" - ")
			sb.WriteString(artist)
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
