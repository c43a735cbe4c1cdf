// package repositories provides the persistence layer for generated playlists.
//
// Each generation is stored once, immutable, for later listing and export.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/seedmix/internal/shared"
)

// Generation is one recorded pipeline run: the seed input, the produced
// playlist text, and fulfillment metadata.
type Generation struct {
	ID           string
	SeedText     string
	PlaylistText string
	Count        int
	TargetTotal  int
	Success      bool
	Warning      string
	CreatedAt    time.Time
}

// Validate checks the record's data before insertion.
func (g *Generation) Validate() error {
	if g.PlaylistText == "" {
		return fmt.Errorf("%w: empty playlist text", shared.ErrInvalidInput)
	}
	if g.Count < 0 || g.TargetTotal < 0 {
		return fmt.Errorf("%w: negative counts", shared.ErrInvalidInput)
	}
	return nil
}

// GenerationRepository handles CRUD operations for generation history.
type GenerationRepository struct {
	db *sql.DB
}

// NewGenerationRepository creates a new GenerationRepository with the given database connection.
func NewGenerationRepository(db *sql.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create inserts a new generation with a generated ID and timestamp.
func (r *GenerationRepository) Create(gen *Generation) error {
	if gen.ID == "" {
		gen.ID = shared.GenerateID()
	}
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}

	if err := gen.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO generations (id, seed_text, playlist_text, count, target_total, success, warning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		gen.ID,
		gen.SeedText,
		gen.PlaylistText,
		gen.Count,
		gen.TargetTotal,
		gen.Success,
		gen.Warning,
		gen.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}

	return nil
}

// Get retrieves a generation by ID.
func (r *GenerationRepository) Get(id string) (*Generation, error) {
	query := `
		SELECT id, seed_text, playlist_text, count, target_total, success, warning, created_at
		FROM generations
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// List retrieves the most recent generations, newest first.
func (r *GenerationRepository) List(limit int) ([]*Generation, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, seed_text, playlist_text, count, target_total, success, warning, created_at
		FROM generations
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var generations []*Generation
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, gen)
	}

	return generations, rows.Err()
}

// Delete removes a generation by ID.
func (r *GenerationRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM generations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return shared.ErrGenerationNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *GenerationRepository) scanOne(row *sql.Row) (*Generation, error) {
	gen, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrGenerationNotFound
	}
	return gen, err
}

func scanGeneration(row rowScanner) (*Generation, error) {
	var gen Generation
	var warning sql.NullString

	err := row.Scan(
		&gen.ID,
		&gen.SeedText,
		&gen.PlaylistText,
		&gen.Count,
		&gen.TargetTotal,
		&gen.Success,
		&warning,
		&gen.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	gen.Warning = warning.String
	return &gen, nil
}
