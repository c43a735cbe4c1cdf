package playlist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/seedmix/internal/shared"
	tu "github.com/desertthunder/seedmix/internal/testing"
)

func TestSuggest(t *testing.T) {
	logger := shared.NewLogger(nil)
	seeds := []Song{
		{Title: "One", Artist: "A"},
		{Title: "Two", Artist: "B"},
	}

	t.Run("Parses And Collects", func(t *testing.T) {
		suggester := &tu.MockSuggester{
			CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
				return "Three - C\nFour - D\nnot a valid line\nFive - E", nil
			},
		}
		s := NewSuggestionSource(suggester, logger)

		got := s.Suggest(context.Background(), seeds, 3, 3, map[string]bool{})

		if len(got) != 3 {
			t.Fatalf("expected 3 suggestions, got %d", len(got))
		}
		if got[0].Title != "Three" || got[2].Title != "Five" {
			t.Errorf("unexpected suggestions: %v", got)
		}
		if suggester.Calls != 1 {
			t.Errorf("expected 1 completion call, got %d", suggester.Calls)
		}
	})

	t.Run("Skips Excluded And Marks Accepted", func(t *testing.T) {
		suggester := &tu.MockSuggester{
			CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
				return "One - A\nThree - C", nil
			},
		}
		s := NewSuggestionSource(suggester, logger)

		exclude := map[string]bool{Key("One", "A"): true}
		got := s.Suggest(context.Background(), seeds, 5, 1, exclude)

		if len(got) != 1 || got[0].Title != "Three" {
			t.Fatalf("expected only the new song, got %v", got)
		}
		if !exclude[Key("Three", "C")] {
			t.Error("expected accepted suggestion to be marked excluded")
		}
	})

	t.Run("Retries Until Need Met", func(t *testing.T) {
		responses := []string{"Three - C", "Four - D"}
		suggester := &tu.MockSuggester{}
		suggester.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			return responses[suggester.Calls-1], nil
		}
		s := NewSuggestionSource(suggester, logger)

		got := s.Suggest(context.Background(), seeds, 2, 3, map[string]bool{})

		if len(got) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(got))
		}
		if suggester.Calls != 2 {
			t.Errorf("expected 2 completion calls, got %d", suggester.Calls)
		}
	})

	t.Run("Attempts Are Bounded", func(t *testing.T) {
		suggester := &tu.MockSuggester{
			CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
				return "", errors.New("overloaded")
			},
		}
		s := NewSuggestionSource(suggester, logger)

		got := s.Suggest(context.Background(), seeds, 5, 3, map[string]bool{})

		if len(got) != 0 {
			t.Fatalf("expected no suggestions, got %v", got)
		}
		if suggester.Calls != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", suggester.Calls)
		}
	})

	t.Run("Zero Need Short Circuits", func(t *testing.T) {
		suggester := &tu.MockSuggester{}
		s := NewSuggestionSource(suggester, logger)

		if got := s.Suggest(context.Background(), seeds, 0, 3, map[string]bool{}); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
		if suggester.Calls != 0 {
			t.Errorf("expected no calls, got %d", suggester.Calls)
		}
	})
}

func TestBuildSuggestPrompt(t *testing.T) {
	seeds := []Song{{Title: "One", Artist: "A"}}

	t.Run("Includes Seeds And Count", func(t *testing.T) {
		prompt := buildSuggestPrompt(seeds, 4, nil)

		if !strings.Contains(prompt, "One - A") {
			t.Error("expected seed line in prompt")
		}
		if !strings.Contains(prompt, "Suggest 4 more songs") {
			t.Error("expected count in prompt")
		}
	})

	t.Run("Exclusions Rendered In Stable Order", func(t *testing.T) {
		exclude := map[string]bool{
			Key("Zebra", "Z"): true,
			Key("Apple", "A"): true,
		}

		prompt := buildSuggestPrompt(seeds, 2, exclude)

		apple := strings.Index(prompt, "apple - a")
		zebra := strings.Index(prompt, "zebra - z")
		if apple == -1 || zebra == -1 {
			t.Fatalf("expected both exclusions in prompt:\n%s", prompt)
		}
		if apple > zebra {
			t.Error("expected exclusions sorted")
		}
	})
}
