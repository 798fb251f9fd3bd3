package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/taxappeal/internal/database"
	"github.com/stwalsh4118/taxappeal/internal/models"
)

// DraftRepository defines the data access operations for petition drafts.
type DraftRepository interface {
	// Save inserts a draft. The caller assigns the ID and creation time.
	Save(ctx context.Context, draft *models.PetitionDraft) error

	// FindByID returns the draft with the given ID.
	// Returns nil, nil if no draft is found (not an error).
	// Returns error only for actual database failures.
	FindByID(ctx context.Context, id uuid.UUID) (*models.PetitionDraft, error)

	// ListByArea returns the most recent drafts for an area, newest first.
	// Returns an empty slice if there are none.
	ListByArea(ctx context.Context, areaCode string, limit int) ([]models.PetitionDraft, error)
}

// draftRepository is the concrete implementation of DraftRepository.
type draftRepository struct {
	db *database.Database
}

// NewDraftRepository creates a new instance of DraftRepository.
func NewDraftRepository(db *database.Database) DraftRepository {
	return &draftRepository{
		db: db,
	}
}

var draftTable = models.PetitionDraft{}.TableName()

const draftColumns = `
	id,
	area_code,
	parcel_number,
	address,
	assessed_value,
	recommended_value,
	appeal_recommended,
	petition,
	created_at`

// Save writes one draft row.
func (r *draftRepository) Save(ctx context.Context, d *models.PetitionDraft) error {
	query := `INSERT INTO ` + draftTable + ` (` + draftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Pool.Exec(ctx, query,
		d.ID,
		d.AreaCode,
		d.ParcelNumber,
		d.Address,
		d.AssessedValue,
		d.RecommendedValue,
		d.AppealRecommended,
		d.Petition,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft %s: %w", d.ID, err)
	}
	return nil
}

// FindByID loads one draft by primary key.
func (r *draftRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.PetitionDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM ` + draftTable + ` WHERE id = $1`

	d, err := scanDraft(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query draft %s: %w", id, err)
	}
	return d, nil
}

// Maximum number of drafts returned by one listing
const maxListResults = 50

// ListByArea lists an area's drafts, newest first.
func (r *draftRepository) ListByArea(ctx context.Context, areaCode string, limit int) ([]models.PetitionDraft, error) {
	if limit <= 0 || limit > maxListResults {
		limit = maxListResults
	}
	query := `SELECT ` + draftColumns + `
		FROM ` + draftTable + `
		WHERE area_code = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, query, areaCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts for area %s: %w", areaCode, err)
	}
	defer rows.Close()

	results := []models.PetitionDraft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft row: %w", err)
		}
		results = append(results, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft rows: %w", err)
	}
	return results, nil
}

func scanDraft(row pgx.Row) (*models.PetitionDraft, error) {
	var d models.PetitionDraft
	err := row.Scan(
		&d.ID,
		&d.AreaCode,
		&d.ParcelNumber,
		&d.Address,
		&d.AssessedValue,
		&d.RecommendedValue,
		&d.AppealRecommended,
		&d.Petition,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
