// Package notification stores admin-to-user messages. Delivery is
// pull-based: users read their inbox, nothing is pushed.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/domain"
	"github.com/yourfuture/platform/internal/repository"
)

// Service provides the admin messaging operations.
type Service struct {
	repo  repository.NotificationRepository
	users repository.UserRepository
	log   *slog.Logger
}

// NewService constructs a new Service instance.
func NewService(repo repository.NotificationRepository, users repository.UserRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, users: users, log: log}
}

// Send stores a message from the admin session to targetID. Admins
// cannot message themselves.
func (s *Service) Send(ctx context.Context, session *auth.Session, targetID int64, message string) (*domain.Notification, error) {
	if !session.IsAdmin() {
		return nil, apperr.NewAuthorization("admin rights required")
	}
	if targetID == session.UserID {
		return nil, apperr.NewValidation("cannot send a notification to yourself")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.NewValidation("message is required")
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("user")
		}
		return nil, apperr.NewDatabase(err)
	}

	n := &domain.Notification{
		UserID:  targetID,
		AdminID: session.UserID,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperr.NewDatabase(err)
	}

	if s.log != nil {
		s.log.Info("notification stored",
			slog.Int64("notification_id", n.ID),
			slog.Int64("user_id", targetID),
		)
	}

	return n, nil
}

// ListFor returns the caller's inbox, newest first.
func (s *Service) ListFor(ctx context.Context, session *auth.Session) ([]*domain.Notification, error) {
	if session == nil {
		return nil, apperr.NewAuthentication("authentication required")
	}

	notifications, err := s.repo.ListForUser(ctx, session.UserID)
	if err != nil {
		return nil, apperr.NewDatabase(err)
	}

	return notifications, nil
}
