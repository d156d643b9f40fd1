// Package startup implements the startup listing lifecycle: moderated
// submission, the funds ledger, the stage timeline and stage
// advancement.
package startup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/domain"
	"github.com/yourfuture/platform/internal/funds"
	"github.com/yourfuture/platform/internal/moderation"
	"github.com/yourfuture/platform/internal/repository"
	"github.com/yourfuture/platform/internal/stage"
)

const entityName = "startup"

// Service provides business operations over startups.
type Service struct {
	repo repository.StartupRepository
	log  *slog.Logger
}

// NewService constructs a new Service instance.
func NewService(repo repository.StartupRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns the startups the session may see. session is nil for
// anonymous callers; mineOnly requires authentication.
func (s *Service) List(ctx context.Context, session *auth.Session, mineOnly bool) ([]*domain.Startup, error) {
	if mineOnly && session == nil {
		return nil, apperr.NewAuthentication("authentication required for the creator filter")
	}

	filter := repository.ListFilter{CreatorOnly: mineOnly}
	if session != nil {
		filter.ViewerID = session.UserID
		filter.Admin = session.IsAdmin()
	}

	startups, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.NewDatabase(err)
	}

	return startups, nil
}

// Get returns one startup if the session may see it.
func (s *Service) Get(ctx context.Context, session *auth.Session, id int64) (*domain.Startup, error) {
	found, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin := session.IsAdmin()
	isCreator := session != nil && found.OwnedBy(session.UserID)
	if !found.Status.VisibleTo(isAdmin, isCreator) {
		return nil, apperr.NewNotFound(entityName)
	}

	return found, nil
}

// CreateInput carries the submission form.
type CreateInput struct {
	Name         string
	Description  string
	OpenseaLink  string
	CurrentStage string
}

// Create submits a new startup for moderation. The creator's profile
// must already carry a telegram handle and a resume link.
func (s *Service) Create(ctx context.Context, creator *domain.User, input CreateInput) (*domain.Startup, error) {
	if !creator.ProfileComplete() || !domain.ValidLink(creator.ResumeLink) {
		return nil, apperr.NewValidation(fmt.Sprintf(
			"complete your profile first: %s", strings.Join(creator.MissingProfileFields(), ", "),
		))
	}

	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if name == "" || description == "" {
		return nil, apperr.NewValidation("name and description are required")
	}

	openseaLink := strings.TrimSpace(input.OpenseaLink)
	if openseaLink != "" && !domain.ValidLink(openseaLink) {
		return nil, apperr.NewValidation("opensea_link must be a valid http(s) URL")
	}

	currentStage := stage.Stage(input.CurrentStage)
	if !currentStage.Valid() {
		return nil, apperr.NewValidation(fmt.Sprintf("unknown stage %q", input.CurrentStage))
	}

	newStartup := &domain.Startup{
		Name:         name,
		Description:  description,
		FundsRaised:  funds.Ledger{},
		OpenseaLink:  openseaLink,
		Status:       moderation.StatusPending,
		CreatorID:    creator.ID,
		CurrentStage: currentStage,
		Timeline:     stage.Initial(currentStage),
	}

	if err := s.repo.Create(ctx, newStartup); err != nil {
		return nil, apperr.NewDatabase(err)
	}

	if s.log != nil {
		s.log.Info("startup submitted",
			slog.Int64("startup_id", newStartup.ID),
			slog.Int64("creator_id", creator.ID),
		)
	}

	return newStartup, nil
}

// UpdateFunds replaces the funds ledger from a currency→amount-string
// mapping. Owner or admin only; the first invalid entry aborts the
// whole request.
func (s *Service) UpdateFunds(ctx context.Context, session *auth.Session, id int64, amounts map[string]string, expectedVersion int64) (*domain.Startup, error) {
	found, err := s.findOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	ledger, err := funds.Parse(amounts)
	if err != nil {
		var invalid *funds.InvalidAmountError
		if errors.As(err, &invalid) {
			return nil, apperr.NewValidation(invalid.Error())
		}
		return nil, apperr.NewValidation(err.Error())
	}

	found.FundsRaised = ledger

	return s.save(ctx, found, expectedVersion)
}

// UpdateTimeline merges planned dates into the stage timeline. Owner or
// admin only; keys must be stages strictly ahead of the current one.
func (s *Service) UpdateTimeline(ctx context.Context, session *auth.Session, id int64, updates map[string]*string, expectedVersion int64) (*domain.Startup, error) {
	found, err := s.findOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	merged, err := stage.Merge(found.CurrentStage, found.Timeline, updates)
	if err != nil {
		return nil, apperr.NewValidation(err.Error())
	}

	found.Timeline = merged

	return s.save(ctx, found, expectedVersion)
}

// Approve moves a pending startup into the public listing. Admin only.
func (s *Service) Approve(ctx context.Context, session *auth.Session, id int64, expectedVersion int64) (*domain.Startup, error) {
	found, err := s.findForAdmin(ctx, session, id)
	if err != nil {
		return nil, err
	}

	next, err := moderation.Approve(entityName, found.Status)
	if err != nil {
		return nil, apperr.NewState("only pending startups can be approved")
	}

	found.Status = next
	found.RejectionReason = ""

	return s.save(ctx, found, expectedVersion)
}

// Reject declines a pending startup with a reason. Admin only.
func (s *Service) Reject(ctx context.Context, session *auth.Session, id int64, reason string, expectedVersion int64) (*domain.Startup, error) {
	found, err := s.findForAdmin(ctx, session, id)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	next, err := moderation.Reject(entityName, found.Status, reason)
	if err != nil {
		if errors.Is(err, moderation.ErrEmptyReason) {
			return nil, apperr.NewValidation("rejection reason is required")
		}
		return nil, apperr.NewState("only pending startups can be rejected")
	}

	found.Status = next
	found.RejectionReason = reason

	return s.save(ctx, found, expectedVersion)
}

// ToggleHold flips an approved startup to held and back. Admin only.
func (s *Service) ToggleHold(ctx context.Context, session *auth.Session, id int64, expectedVersion int64) (*domain.Startup, error) {
	found, err := s.findForAdmin(ctx, session, id)
	if err != nil {
		return nil, err
	}

	next, err := moderation.ToggleHold(entityName, found.Status)
	if err != nil {
		return nil, apperr.NewState("only approved or held startups can be toggled")
	}

	found.Status = next

	return s.save(ctx, found, expectedVersion)
}

// AdvanceStage moves the current stage forward. Admin only; moving
// backwards or sideways is a validation error, and timeline keys the
// advance overtakes are pruned.
func (s *Service) AdvanceStage(ctx context.Context, session *auth.Session, id int64, to string, expectedVersion int64) (*domain.Startup, error) {
	found, err := s.findForAdmin(ctx, session, id)
	if err != nil {
		return nil, err
	}

	target := stage.Stage(to)
	if !target.Valid() {
		return nil, apperr.NewValidation(fmt.Sprintf("unknown stage %q", to))
	}
	if target.Order() <= found.CurrentStage.Order() {
		return nil, apperr.NewValidation("current_stage can only move forward")
	}

	found.CurrentStage = target
	found.Timeline = stage.Prune(target, found.Timeline)

	return s.save(ctx, found, expectedVersion)
}

func (s *Service) find(ctx context.Context, id int64) (*domain.Startup, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound(entityName)
		}
		return nil, apperr.NewDatabase(err)
	}

	return found, nil
}

func (s *Service) findOwned(ctx context.Context, session *auth.Session, id int64) (*domain.Startup, error) {
	if session == nil {
		return nil, apperr.NewAuthentication("authentication required")
	}

	found, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.IsAdmin() && !found.OwnedBy(session.UserID) {
		return nil, apperr.NewAuthorization("only the owner or an admin may modify this startup")
	}

	return found, nil
}

func (s *Service) findForAdmin(ctx context.Context, session *auth.Session, id int64) (*domain.Startup, error) {
	if !session.IsAdmin() {
		return nil, apperr.NewAuthorization("admin rights required")
	}

	return s.find(ctx, id)
}

// save persists the mutation, translating a stale If-Match version into
// a conflict.
func (s *Service) save(ctx context.Context, startup *domain.Startup, expectedVersion int64) (*domain.Startup, error) {
	if expectedVersion > 0 && expectedVersion != startup.Version {
		return nil, apperr.NewConflict("startup was modified by someone else, reload and retry")
	}

	if err := s.repo.Update(ctx, startup); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperr.NewConflict("startup was modified by someone else, reload and retry")
		}
		return nil, apperr.NewDatabase(err)
	}

	return startup, nil
}

// CountByStatus reports stored startups per status for the metrics
// collector.
func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}
