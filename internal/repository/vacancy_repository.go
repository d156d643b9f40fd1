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

// VacancyRepository defines persistence operations for vacancies.
type VacancyRepository interface {
	Create(ctx context.Context, vacancy *domain.Vacancy) error
	FindByID(ctx context.Context, id int64) (*domain.Vacancy, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Vacancy, error)
	Update(ctx context.Context, vacancy *domain.Vacancy) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type vacancyRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewVacancyRepository creates a new SQL-backed vacancy repository.
func NewVacancyRepository(db *sql.DB, log *slog.Logger) VacancyRepository {
	return &vacancyRepository{
		db:  db,
		log: log,
	}
}

const vacancyColumns = `v.id, v.startup_id, v.title, v.description, v.requirements, COALESCE(v.salary, ''),
	v.workload, v.work_format, v.applicants, v.status, COALESCE(v.rejection_reason, ''),
	v.creator_user_id, v.version, v.created_at`

// Create persists a new vacancy and fills in the generated fields.
func (r *vacancyRepository) Create(ctx context.Context, vacancy *domain.Vacancy) error {
	const query = `
		INSERT INTO vacancies (startup_id, title, description, requirements, salary,
			workload, work_format, applicants, status, creator_user_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10)
		RETURNING id, version, created_at
	`

	applicantsJSON, err := json.Marshal(applicantsOrEmpty(vacancy.Applicants))
	if err != nil {
		return fmt.Errorf("encode applicants: %w", err)
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		vacancy.StartupID,
		vacancy.Title,
		vacancy.Description,
		vacancy.Requirements,
		vacancy.Salary,
		vacancy.Workload,
		vacancy.WorkFormat,
		applicantsJSON,
		vacancy.Status,
		vacancy.CreatorID,
	).Scan(&vacancy.ID, &vacancy.Version, &vacancy.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to create vacancy", slog.Int64("startup_id", vacancy.StartupID), slog.Any("error", err))
		}
		return fmt.Errorf("insert vacancy: %w", err)
	}

	return nil
}

// FindByID retrieves one vacancy.
func (r *vacancyRepository) FindByID(ctx context.Context, id int64) (*domain.Vacancy, error) {
	query := fmt.Sprintf(`SELECT %s FROM vacancies v WHERE v.id = $1`, vacancyColumns)

	return scanVacancy(r.db.QueryRowContext(ctx, query, id))
}

// List returns the vacancies visible under filter, newest first. The
// parent startup participates in the filter: outside the admin view a
// vacancy is public only while its startup is approved and not held.
func (r *vacancyRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Vacancy, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM vacancies v JOIN startups s ON s.id = v.startup_id`,
		vacancyColumns,
	)

	var args []any
	switch {
	case filter.CreatorOnly:
		query += ` WHERE v.creator_user_id = $1`
		args = append(args, filter.ViewerID)
	case filter.Admin:
		// no filter
	case filter.ViewerID != 0:
		query += ` WHERE s.status = $1 AND (v.status = $1 OR (v.creator_user_id = $2 AND v.status IN ($3, $4, $5)))`
		args = append(args,
			moderation.StatusApproved,
			filter.ViewerID,
			moderation.StatusPending, moderation.StatusRejected, moderation.StatusHeld,
		)
	default:
		query += ` WHERE s.status = $1 AND v.status = $1`
		args = append(args, moderation.StatusApproved)
	}
	query += ` ORDER BY v.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	defer rows.Close()

	var vacancies []*domain.Vacancy
	for rows.Next() {
		vacancy, err := scanVacancy(rows)
		if err != nil {
			return nil, err
		}
		vacancies = append(vacancies, vacancy)
	}

	return vacancies, rows.Err()
}

// Update saves every mutable field, guarded by the version the caller
// read. The stored version increments on success.
func (r *vacancyRepository) Update(ctx context.Context, vacancy *domain.Vacancy) error {
	const query = `
		UPDATE vacancies
		SET title = $3, description = $4, requirements = $5, salary = NULLIF($6, ''),
			workload = $7, work_format = $8, applicants = $9, status = $10,
			rejection_reason = NULLIF($11, ''), version = version + 1
		WHERE id = $1 AND version = $2
	`

	applicantsJSON, err := json.Marshal(applicantsOrEmpty(vacancy.Applicants))
	if err != nil {
		return fmt.Errorf("encode applicants: %w", err)
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		vacancy.ID,
		vacancy.Version,
		vacancy.Title,
		vacancy.Description,
		vacancy.Requirements,
		vacancy.Salary,
		vacancy.Workload,
		vacancy.WorkFormat,
		applicantsJSON,
		vacancy.Status,
		vacancy.RejectionReason,
	)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to update vacancy", slog.Int64("vacancy_id", vacancy.ID), slog.Any("error", err))
		}
		return fmt.Errorf("update vacancy: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vacancy rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	vacancy.Version++

	return nil
}

// Delete removes a vacancy permanently.
func (r *vacancyRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM vacancies WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to delete vacancy", slog.Int64("vacancy_id", id), slog.Any("error", err))
		}
		return fmt.Errorf("delete vacancy: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vacancy rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CountByStatus reports how many vacancies sit in each status.
func (r *vacancyRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) FROM vacancies GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count vacancies: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan vacancy count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func scanVacancy(row rowScanner) (*domain.Vacancy, error) {
	var vacancy domain.Vacancy
	var applicantsJSON []byte

	if err := row.Scan(
		&vacancy.ID,
		&vacancy.StartupID,
		&vacancy.Title,
		&vacancy.Description,
		&vacancy.Requirements,
		&vacancy.Salary,
		&vacancy.Workload,
		&vacancy.WorkFormat,
		&applicantsJSON,
		&vacancy.Status,
		&vacancy.RejectionReason,
		&vacancy.CreatorID,
		&vacancy.Version,
		&vacancy.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan vacancy: %w", err)
	}

	if err := json.Unmarshal(applicantsJSON, &vacancy.Applicants); err != nil {
		return nil, fmt.Errorf("decode applicants: %w", err)
	}

	return &vacancy, nil
}

func applicantsOrEmpty(applicants []domain.Applicant) []domain.Applicant {
	if applicants == nil {
		return []domain.Applicant{}
	}
	return applicants
}
