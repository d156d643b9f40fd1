// Package user provides registration, login and profile management.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/domain"
	"github.com/yourfuture/platform/internal/profilecache"
	"github.com/yourfuture/platform/internal/repository"
)

// reservedUsername cannot be self-registered; it is seeded at boot.
const reservedUsername = "admin"

// Service provides business operations over users.
type Service struct {
	repo   repository.UserRepository
	tokens *auth.Manager
	cache  *profilecache.Cache
	log    *slog.Logger
}

// NewService constructs a new Service instance. cache may be nil.
func NewService(repo repository.UserRepository, tokens *auth.Manager, cache *profilecache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, cache: cache, log: log}
}

// Register creates a new contributor account.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.NewValidation("username and password are required")
	}
	if len(password) < 4 {
		return nil, apperr.NewValidation("password must be at least 4 characters")
	}
	if username == reservedUsername {
		return nil, apperr.NewConflict("this username is reserved")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, apperr.NewConflict("username is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NewDatabase(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.NewDatabase(err)
	}

	newUser := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		FullName:     username,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, apperr.NewDatabase(err)
	}

	if s.log != nil {
		s.log.Info("user registered", slog.Int64("user_id", newUser.ID), slog.String("username", username))
	}

	return newUser, nil
}

// Authenticate checks credentials and issues an access token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		return nil, "", apperr.NewValidation("username and password are required")
	}

	found, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.NewAuthentication("invalid credentials")
		}
		return nil, "", apperr.NewDatabase(err)
	}

	if !auth.CheckPassword(found.PasswordHash, password) {
		return nil, "", apperr.NewAuthentication("invalid credentials")
	}

	token, err := s.tokens.Issue(found)
	if err != nil {
		return nil, "", apperr.NewDatabase(err)
	}

	if s.log != nil {
		s.log.Info("user logged in", slog.Int64("user_id", found.ID), slog.String("role", string(found.Role)))
	}

	return found, token, nil
}

// Get returns the user's profile, preferring the cache.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.User, error) {
	if cached, err := s.cache.Get(ctx, userID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil && s.log != nil {
		s.log.Warn("profile cache read failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	found, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("user")
		}
		return nil, apperr.NewDatabase(err)
	}

	if err := s.cache.Set(ctx, found); err != nil && s.log != nil {
		s.log.Warn("profile cache write failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	return found, nil
}

// ProfileUpdate carries the optional profile fields; nil leaves a field
// untouched.
type ProfileUpdate struct {
	FullName   *string
	Telegram   *string
	ResumeLink *string
}

// UpdateProfile applies the submitted fields and returns the canonical
// profile. A blank full name falls back to the username; telegram
// handles are prefixed with "@" and must be unique; the resume link must
// be an http(s) URL.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error) {
	found, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("user")
		}
		return nil, apperr.NewDatabase(err)
	}

	if update.FullName != nil {
		fullName := strings.TrimSpace(*update.FullName)
		if fullName == "" {
			fullName = found.Username
		}
		found.FullName = fullName
	}

	if update.Telegram != nil {
		telegram := strings.TrimSpace(*update.Telegram)
		if telegram != "" && !strings.HasPrefix(telegram, "@") {
			telegram = "@" + telegram
		}
		if telegram != "" {
			inUse, err := s.repo.TelegramInUse(ctx, telegram, userID)
			if err != nil {
				return nil, apperr.NewDatabase(err)
			}
			if inUse {
				return nil, apperr.NewConflict("this telegram handle is already in use")
			}
		}
		found.Telegram = telegram
	}

	if update.ResumeLink != nil {
		link := strings.TrimSpace(*update.ResumeLink)
		if link != "" && !domain.ValidLink(link) {
			return nil, apperr.NewValidation("resume_link must be a valid http(s) URL")
		}
		found.ResumeLink = link
	}

	if err := s.repo.UpdateProfile(ctx, found); err != nil {
		return nil, apperr.NewDatabase(err)
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil && s.log != nil {
		s.log.Warn("profile cache invalidation failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	return found, nil
}

// ListOthers returns every user except the caller, for the admin
// notification picker.
func (s *Service) ListOthers(ctx context.Context, callerID int64) ([]*domain.User, error) {
	users, err := s.repo.ListExcept(ctx, callerID)
	if err != nil {
		return nil, apperr.NewDatabase(err)
	}

	return users, nil
}

// EnsureAdmin creates the seeded administrator account if it does not
// exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("admin credentials are not configured")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up admin account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		FullName:     "Administrator",
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	if s.log != nil {
		s.log.Info("admin account seeded", slog.Int64("user_id", admin.ID))
	}

	return nil
}
