// Package vacancy implements job postings scoped to approved startups:
// moderated publication, the apply workflow with contact snapshots, and
// the effective-visibility rules inherited from the parent startup.
package vacancy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/domain"
	"github.com/yourfuture/platform/internal/moderation"
	"github.com/yourfuture/platform/internal/repository"
)

const entityName = "vacancy"

// Service provides business operations over vacancies.
type Service struct {
	repo     repository.VacancyRepository
	startups repository.StartupRepository
	log      *slog.Logger
}

// NewService constructs a new Service instance.
func NewService(repo repository.VacancyRepository, startups repository.StartupRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, startups: startups, log: log}
}

// List returns the vacancies the session may see. For everyone but an
// admin the parent startup must be publicly listed.
func (s *Service) List(ctx context.Context, session *auth.Session, mineOnly bool) ([]*domain.Vacancy, error) {
	if mineOnly && session == nil {
		return nil, apperr.NewAuthentication("authentication required for the creator filter")
	}

	filter := repository.ListFilter{CreatorOnly: mineOnly}
	if session != nil {
		filter.ViewerID = session.UserID
		filter.Admin = session.IsAdmin()
	}

	vacancies, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.NewDatabase(err)
	}

	return vacancies, nil
}

// Get returns one vacancy if the session may see it.
func (s *Service) Get(ctx context.Context, session *auth.Session, id int64) (*domain.Vacancy, error) {
	found, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin := session.IsAdmin()
	isCreator := session != nil && found.OwnedBy(session.UserID)
	if !found.Status.VisibleTo(isAdmin, isCreator) {
		return nil, apperr.NewNotFound(entityName)
	}
	if !isAdmin && !isCreator {
		parent, err := s.parent(ctx, found.StartupID)
		if err != nil {
			return nil, err
		}
		if !parent.Status.PubliclyListed() {
			return nil, apperr.NewNotFound(entityName)
		}
	}

	return found, nil
}

// CreateInput carries the posting form.
type CreateInput struct {
	StartupID    int64
	Title        string
	Description  string
	Requirements string
	Salary       string
	Workload     string
	WorkFormat   string
}

// Create posts a vacancy under an approved startup the caller owns (or
// any approved startup for an admin). The posting enters moderation as
// pending.
func (s *Service) Create(ctx context.Context, session *auth.Session, input CreateInput) (*domain.Vacancy, error) {
	if session == nil {
		return nil, apperr.NewAuthentication("authentication required")
	}

	parent, err := s.parent(ctx, input.StartupID)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && !parent.OwnedBy(session.UserID) {
		return nil, apperr.NewAuthorization("only the startup owner or an admin may post vacancies")
	}
	if parent.Status != moderation.StatusApproved {
		return nil, apperr.NewState("vacancies can only be posted under an approved startup")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperr.NewValidation("title and description are required")
	}

	workload := domain.Workload(input.Workload)
	if !workload.Valid() {
		return nil, apperr.NewValidation(fmt.Sprintf("workload must be one of 20, 30, 40, flexible; got %q", input.Workload))
	}
	workFormat := domain.WorkFormat(input.WorkFormat)
	if !workFormat.Valid() {
		return nil, apperr.NewValidation(fmt.Sprintf("work_format must be one of remote, office, hybrid; got %q", input.WorkFormat))
	}

	newVacancy := &domain.Vacancy{
		StartupID:    parent.ID,
		Title:        title,
		Description:  description,
		Requirements: strings.TrimSpace(input.Requirements),
		Salary:       strings.TrimSpace(input.Salary),
		Workload:     workload,
		WorkFormat:   workFormat,
		Applicants:   []domain.Applicant{},
		Status:       moderation.StatusPending,
		CreatorID:    session.UserID,
	}

	if err := s.repo.Create(ctx, newVacancy); err != nil {
		return nil, apperr.NewDatabase(err)
	}

	if s.log != nil {
		s.log.Info("vacancy posted",
			slog.Int64("vacancy_id", newVacancy.ID),
			slog.Int64("startup_id", parent.ID),
			slog.Int64("creator_id", session.UserID),
		)
	}

	return newVacancy, nil
}

// Approve publishes a pending vacancy. Admin only; the parent startup
// must still be approved.
func (s *Service) Approve(ctx context.Context, session *auth.Session, id int64, expectedVersion int64) (*domain.Vacancy, error) {
	found, err := s.findForAdmin(ctx, session, id)
	if err != nil {
		return nil, err
	}

	parent, err := s.parent(ctx, found.StartupID)
	if err != nil {
		return nil, err
	}
	if parent.Status != moderation.StatusApproved {
		return nil, apperr.NewState("the parent startup is no longer approved")
	}

	next, err := moderation.Approve(entityName, found.Status)
	if err != nil {
		return nil, apperr.NewState("only pending vacancies can be approved")
	}

	found.Status = next
	found.RejectionReason = ""

	return s.save(ctx, found, expectedVersion)
}

// Reject declines a pending vacancy with a reason. Admin only.
func (s *Service) Reject(ctx context.Context, session *auth.Session, id int64, reason string, expectedVersion int64) (*domain.Vacancy, error) {
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
		return nil, apperr.NewState("only pending vacancies can be rejected")
	}

	found.Status = next
	found.RejectionReason = reason

	return s.save(ctx, found, expectedVersion)
}

// ToggleHold flips an approved vacancy to held and back. Admin only.
func (s *Service) ToggleHold(ctx context.Context, session *auth.Session, id int64, expectedVersion int64) (*domain.Vacancy, error) {
	found, err := s.findForAdmin(ctx, session, id)
	if err != nil {
		return nil, err
	}

	next, err := moderation.ToggleHold(entityName, found.Status)
	if err != nil {
		return nil, apperr.NewState("only approved or held vacancies can be toggled")
	}

	found.Status = next

	return s.save(ctx, found, expectedVersion)
}

// Apply records the caller as an applicant, snapshotting their current
// contact details. The vacancy and its parent startup must both be
// approved, the profile must be complete, and repeat applications
// conflict.
func (s *Service) Apply(ctx context.Context, applicant *domain.User, id int64) (*domain.Vacancy, error) {
	found, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if found.Status != moderation.StatusApproved {
		return nil, apperr.NewState("this vacancy is not accepting applications")
	}

	parent, err := s.parent(ctx, found.StartupID)
	if err != nil {
		return nil, err
	}
	if parent.Status != moderation.StatusApproved {
		return nil, apperr.NewState("the startup behind this vacancy is not accepting applications")
	}

	if !applicant.ProfileComplete() || !domain.ValidLink(applicant.ResumeLink) {
		return nil, apperr.NewValidation(fmt.Sprintf(
			"complete your profile first: %s", strings.Join(applicant.MissingProfileFields(), ", "),
		))
	}

	if found.HasApplicant(applicant.ID) {
		return nil, apperr.NewConflict("already applied to this vacancy")
	}

	found.Applicants = append(found.Applicants, domain.Applicant{
		UserID:     applicant.ID,
		Telegram:   applicant.Telegram,
		ResumeLink: applicant.ResumeLink,
	})

	updated, err := s.save(ctx, found, 0)
	if err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.Info("vacancy application recorded",
			slog.Int64("vacancy_id", found.ID),
			slog.Int64("user_id", applicant.ID),
		)
	}

	return updated, nil
}

// Delete removes a vacancy. Owner or admin only.
func (s *Service) Delete(ctx context.Context, session *auth.Session, id int64) error {
	if session == nil {
		return apperr.NewAuthentication("authentication required")
	}

	found, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !session.IsAdmin() && !found.OwnedBy(session.UserID) {
		return apperr.NewAuthorization("only the owner or an admin may delete this vacancy")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NewNotFound(entityName)
		}
		return apperr.NewDatabase(err)
	}

	return nil
}

// ParentStartup loads the startup a vacancy belongs to. Serialization
// needs it for the derived fields.
func (s *Service) ParentStartup(ctx context.Context, startupID int64) (*domain.Startup, error) {
	return s.parent(ctx, startupID)
}

func (s *Service) find(ctx context.Context, id int64) (*domain.Vacancy, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound(entityName)
		}
		return nil, apperr.NewDatabase(err)
	}

	return found, nil
}

func (s *Service) findForAdmin(ctx context.Context, session *auth.Session, id int64) (*domain.Vacancy, error) {
	if !session.IsAdmin() {
		return nil, apperr.NewAuthorization("admin rights required")
	}

	return s.find(ctx, id)
}

func (s *Service) parent(ctx context.Context, startupID int64) (*domain.Startup, error) {
	parent, err := s.startups.FindByID(ctx, startupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("startup")
		}
		return nil, apperr.NewDatabase(err)
	}

	return parent, nil
}

func (s *Service) save(ctx context.Context, vacancy *domain.Vacancy, expectedVersion int64) (*domain.Vacancy, error) {
	if expectedVersion > 0 && expectedVersion != vacancy.Version {
		return nil, apperr.NewConflict("vacancy was modified by someone else, reload and retry")
	}

	if err := s.repo.Update(ctx, vacancy); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperr.NewConflict("vacancy was modified by someone else, reload and retry")
		}
		return nil, apperr.NewDatabase(err)
	}

	return vacancy, nil
}

// CountByStatus reports stored vacancies per status for the metrics
// collector.
func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}
