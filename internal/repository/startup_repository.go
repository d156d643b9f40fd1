package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourfuture/platform/internal/domain"
	"github.com/yourfuture/platform/internal/moderation"
)

// ListFilter narrows a listing query to what the caller may see.
// ViewerID is zero for anonymous callers.
type ListFilter struct {
	ViewerID    int64
	Admin       bool
	CreatorOnly bool
}

// StartupRepository defines persistence operations for startups.
type StartupRepository interface {
	Create(ctx context.Context, startup *domain.Startup) error
	FindByID(ctx context.Context, id int64) (*domain.Startup, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Startup, error)
	Update(ctx context.Context, startup *domain.Startup) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type startupRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStartupRepository creates a new SQL-backed startup repository.
func NewStartupRepository(db *sql.DB, log *slog.Logger) StartupRepository {
	return &startupRepository{
		db:  db,
		log: log,
	}
}

const startupColumns = `id, name, description, funds_raised, COALESCE(opensea_link, ''), status,
	COALESCE(rejection_reason, ''), creator_user_id, current_stage, stage_timeline, version, created_at`

// Create persists a new startup and fills in the generated fields.
func (r *startupRepository) Create(ctx context.Context, startup *domain.Startup) error {
	const query = `
		INSERT INTO startups (name, description, funds_raised, opensea_link, status,
			creator_user_id, current_stage, stage_timeline)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id, version, created_at
	`

	fundsJSON, err := json.Marshal(startup.FundsRaised)
	if err != nil {
		return fmt.Errorf("encode funds: %w", err)
	}
	timelineJSON, err := json.Marshal(startup.Timeline)
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		startup.Name,
		startup.Description,
		fundsJSON,
		startup.OpenseaLink,
		startup.Status,
		startup.CreatorID,
		startup.CurrentStage,
		timelineJSON,
	).Scan(&startup.ID, &startup.Version, &startup.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to create startup", slog.Int64("creator_id", startup.CreatorID), slog.Any("error", err))
		}
		return fmt.Errorf("insert startup: %w", err)
	}

	return nil
}

// FindByID retrieves one startup.
func (r *startupRepository) FindByID(ctx context.Context, id int64) (*domain.Startup, error) {
	query := fmt.Sprintf(`SELECT %s FROM startups WHERE id = $1`, startupColumns)

	return scanStartup(r.db.QueryRowContext(ctx, query, id))
}

// List returns the startups visible under filter, newest first.
// Visibility is decided here, not in the client: the public sees only
// approved listings, a signed-in user additionally their own records in
// every status, an admin everything.
func (r *startupRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Startup, error) {
	query := fmt.Sprintf(`SELECT %s FROM startups`, startupColumns)

	var args []any
	switch {
	case filter.CreatorOnly:
		query += ` WHERE creator_user_id = $1`
		args = append(args, filter.ViewerID)
	case filter.Admin:
		// no filter
	case filter.ViewerID != 0:
		query += ` WHERE status = $1 OR (creator_user_id = $2 AND status IN ($3, $4, $5))`
		args = append(args,
			moderation.StatusApproved,
			filter.ViewerID,
			moderation.StatusPending, moderation.StatusRejected, moderation.StatusHeld,
		)
	default:
		query += ` WHERE status = $1`
		args = append(args, moderation.StatusApproved)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list startups: %w", err)
	}
	defer rows.Close()

	var startups []*domain.Startup
	for rows.Next() {
		startup, err := scanStartup(rows)
		if err != nil {
			return nil, err
		}
		startups = append(startups, startup)
	}

	return startups, rows.Err()
}

// Update saves every mutable field, guarded by the version the caller
// read. The stored version increments on success.
func (r *startupRepository) Update(ctx context.Context, startup *domain.Startup) error {
	const query = `
		UPDATE startups
		SET name = $3, description = $4, funds_raised = $5, opensea_link = NULLIF($6, ''),
			status = $7, rejection_reason = NULLIF($8, ''), current_stage = $9,
			stage_timeline = $10, version = version + 1
		WHERE id = $1 AND version = $2
	`

	fundsJSON, err := json.Marshal(startup.FundsRaised)
	if err != nil {
		return fmt.Errorf("encode funds: %w", err)
	}
	timelineJSON, err := json.Marshal(startup.Timeline)
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		startup.ID,
		startup.Version,
		startup.Name,
		startup.Description,
		fundsJSON,
		startup.OpenseaLink,
		startup.Status,
		startup.RejectionReason,
		startup.CurrentStage,
		timelineJSON,
	)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to update startup", slog.Int64("startup_id", startup.ID), slog.Any("error", err))
		}
		return fmt.Errorf("update startup: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update startup rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	startup.Version++

	return nil
}

// CountByStatus reports how many startups sit in each status.
func (r *startupRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) FROM startups GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count startups: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan startup count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func scanStartup(row rowScanner) (*domain.Startup, error) {
	var startup domain.Startup
	var fundsJSON, timelineJSON []byte

	if err := row.Scan(
		&startup.ID,
		&startup.Name,
		&startup.Description,
		&fundsJSON,
		&startup.OpenseaLink,
		&startup.Status,
		&startup.RejectionReason,
		&startup.CreatorID,
		&startup.CurrentStage,
		&timelineJSON,
		&startup.Version,
		&startup.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan startup: %w", err)
	}

	if err := json.Unmarshal(fundsJSON, &startup.FundsRaised); err != nil {
		return nil, fmt.Errorf("decode funds: %w", err)
	}
	if err := json.Unmarshal(timelineJSON, &startup.Timeline); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}

	return &startup, nil
}
