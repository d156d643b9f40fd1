// Package repository implements PostgreSQL persistence for the platform
// entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourfuture/platform/internal/domain"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict indicates a concurrent writer already bumped the
// record's version.
var ErrVersionConflict = errors.New("version conflict")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	TelegramInUse(ctx context.Context, telegram string, excludeUserID int64) (bool, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	ListExcept(ctx context.Context, excludeUserID int64) ([]*domain.User, error)
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

const userColumns = `id, username, password_hash, role, full_name, COALESCE(telegram, ''), COALESCE(resume_link, ''), created_at`

// Create persists a new user record and fills in the generated fields.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (username, password_hash, role, full_name, telegram, resume_link)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id, created_at
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.FullName,
		user.Telegram,
		user.ResumeLink,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to create user", slog.String("username", user.Username), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by their identifier.
func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindByUsername retrieves a user by their login name.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)

	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// TelegramInUse reports whether another user already claimed the handle.
func (r *userRepository) TelegramInUse(ctx context.Context, telegram string, excludeUserID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE telegram = $1 AND id <> $2)`

	var inUse bool
	if err := r.db.QueryRowContext(ctx, query, telegram, excludeUserID).Scan(&inUse); err != nil {
		return false, fmt.Errorf("check telegram uniqueness: %w", err)
	}

	return inUse, nil
}

// UpdateProfile saves the editable profile fields.
func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	const query = `
		UPDATE users
		SET full_name = $2, telegram = NULLIF($3, ''), resume_link = NULLIF($4, '')
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, user.ID, user.FullName, user.Telegram, user.ResumeLink)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to update profile", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
		return fmt.Errorf("update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListExcept returns every user other than excludeUserID, ordered by id.
func (r *userRepository) ListExcept(ctx context.Context, excludeUserID int64) ([]*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id <> $1 ORDER BY id`, userColumns)

	rows, err := r.db.QueryContext(ctx, query, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.FullName,
		&user.Telegram,
		&user.ResumeLink,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}
