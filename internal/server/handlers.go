package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/playlist"
	"github.com/desertthunder/seedmix/internal/repositories"
	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
)

// Generator abstracts the playlist pipeline for handler testing.
type Generator interface {
	Generate(ctx context.Context, req playlist.Request) (*playlist.Result, error)
}

// GenerationStore abstracts history persistence; nil disables recording.
type GenerationStore interface {
	Create(gen *repositories.Generation) error
}

// Searcher abstracts combined artist/track catalog search for typeahead.
type Searcher interface {
	Search(ctx context.Context, q, types string, limit int) (*services.SearchResult, error)
}

// PlaylistRequest is the POST /api/playlist body.
type PlaylistRequest struct {
	Songs               []string `json:"songs"`
	DesiredArtistsCount int      `json:"desiredArtistsCount,omitempty"`
	DesiredTotal        int      `json:"desiredTotal,omitempty"`
}

// PlaylistResponse is the success body: newline-joined "Title - Artist"
// lines plus fulfillment metadata.
type PlaylistResponse struct {
	PlaylistText string  `json:"playlistText"`
	Count        int     `json:"count"`
	TargetTotal  int     `json:"targetTotal"`
	Success      bool    `json:"success"`
	Warning      *string `json:"warning"`
}

// ErrorResponse is the structured error body for 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PlaylistHandler serves playlist generation requests.
type PlaylistHandler struct {
	generator Generator
	store     GenerationStore
	logger    *log.Logger
}

// NewPlaylistHandler creates a PlaylistHandler. Store may be nil to disable
// history recording.
func NewPlaylistHandler(generator Generator, store GenerationStore, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{generator: generator, store: store, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{"POST /api/playlist"}
}

// ServeHTTP handles a generation request end to end: decode, run the
// pipeline, record history, respond.
func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a songs array")
		return
	}
	if req.Songs == nil {
		writeError(w, http.StatusBadRequest, "songs array is required, one \"Title - Artist\" line per entry")
		return
	}

	result, err := h.generator.Generate(r.Context(), playlist.Request{
		Songs:          req.Songs,
		DesiredTotal:   req.DesiredTotal,
		DesiredArtists: req.DesiredArtistsCount,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, shared.ErrSeedCount) || errors.Is(err, shared.ErrTooFewArtists) || errors.Is(err, shared.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		h.logger.Error("generation failed", "status", status, "err", err)
		writeError(w, status, err.Error())
		return
	}

	h.record(req, result)

	resp := PlaylistResponse{
		PlaylistText: result.Text(),
		Count:        result.Count,
		TargetTotal:  result.TargetTotal,
		Success:      result.Success,
	}
	if result.Warning != "" {
		resp.Warning = &result.Warning
	}

	writeJSON(w, http.StatusOK, resp)
}

// record persists the generation when a store is configured. Persistence
// failures are logged, never surfaced to the client.
func (h *PlaylistHandler) record(req PlaylistRequest, result *playlist.Result) {
	if h.store == nil {
		return
	}

	gen := &repositories.Generation{
		SeedText:     strings.Join(req.Songs, "\n"),
		PlaylistText: result.Text(),
		Count:        result.Count,
		TargetTotal:  result.TargetTotal,
		Success:      result.Success,
		Warning:      result.Warning,
	}
	if err := h.store.Create(gen); err != nil {
		h.logger.Warn("failed to record generation", "err", err)
	}
}

// SearchArtist is the compact typeahead artist shape.
type SearchArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchTrack is the compact typeahead track shape.
type SearchTrack struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// SearchResponse is the GET /api/search body.
type SearchResponse struct {
	Artists []SearchArtist `json:"artists"`
	Tracks  []SearchTrack  `json:"tracks"`
}

// SearchHandler proxies typeahead artist/track search to the catalog.
type SearchHandler struct {
	catalog Searcher
	logger  *log.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(catalog Searcher, logger *log.Logger) *SearchHandler {
	return &SearchHandler{catalog: catalog, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SearchHandler) Routes() []string {
	return []string{"GET /api/search"}
}

// ServeHTTP handles typeahead queries. Queries under two characters return
// empty results rather than hitting the catalog.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	types := r.URL.Query().Get("type")
	if types == "" {
		types = "artist,track"
	}

	limit := 8
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = min(max(n, 1), 12)
		}
	}

	resp := SearchResponse{Artists: []SearchArtist{}, Tracks: []SearchTrack{}}

	if len(q) < 2 {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	result, err := h.catalog.Search(r.Context(), q, types, limit)
	if err != nil {
		h.logger.Error("typeahead search failed", "q", q, "err", err)
		writeError(w, http.StatusBadGateway, "catalog search failed")
		return
	}

	for _, a := range result.Artists {
		resp.Artists = append(resp.Artists, SearchArtist{ID: a.ID, Name: a.Name})
	}
	for _, t := range result.Tracks {
		resp.Tracks = append(resp.Tracks, SearchTrack{ID: t.ID, Name: t.Title, Artist: t.PrimaryArtist()})
	}

	// Short browser cache keeps the typeahead feeling fast.
	w.Header().Set("Cache-Control", "public, max-age=30, stale-while-revalidate=60")
	writeJSON(w, http.StatusOK, resp)
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

// ServeHTTP responds with a static ok body.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
