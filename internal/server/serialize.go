package server

import (
	"context"

	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/domain"
	"github.com/yourfuture/platform/internal/moderation"
)

// startupView is the wire shape of a startup, embedding the creator's
// contact details so clients never fetch profiles separately.
type startupView struct {
	*domain.Startup
	CreatorUsername   string `json:"creator_username,omitempty"`
	CreatorTelegram   string `json:"creator_telegram,omitempty"`
	CreatorResumeLink string `json:"creator_resume_link,omitempty"`
}

func (s *Server) startupView(ctx context.Context, startup *domain.Startup) startupView {
	view := startupView{Startup: startup}

	creator, err := s.users.Get(ctx, startup.CreatorID)
	if err == nil {
		view.CreatorUsername = creator.Username
		view.CreatorTelegram = creator.Telegram
		view.CreatorResumeLink = creator.ResumeLink
	}

	return view
}

func (s *Server) startupViews(ctx context.Context, startups []*domain.Startup) []startupView {
	views := make([]startupView, 0, len(startups))
	for _, st := range startups {
		views = append(views, s.startupView(ctx, st))
	}
	return views
}

// vacancyView is the wire shape of a vacancy. Applicant contact
// snapshots are serialized only for an admin or the vacancy's creator;
// everyone else gets the count and a restricted flag.
type vacancyView struct {
	*domain.Vacancy
	Applicants           []domain.Applicant `json:"applicants,omitempty"`
	StartupName          string             `json:"startup_name,omitempty"`
	StartupCreatorID     int64              `json:"startup_creator_id,omitempty"`
	ApplicantCount       int                `json:"applicant_count"`
	ApplicantsRestricted bool               `json:"applicants_restricted"`
	IsEffectivelyHeld    bool               `json:"is_effectively_held"`
}

func (s *Server) vacancyView(ctx context.Context, session *auth.Session, vacancy *domain.Vacancy) vacancyView {
	view := vacancyView{
		Vacancy:        vacancy,
		ApplicantCount: len(vacancy.Applicants),
	}

	if session.IsAdmin() || vacancy.OwnedBy(sessionUserID(session)) {
		view.Applicants = vacancy.Applicants
	} else {
		view.ApplicantsRestricted = true
	}

	parent, err := s.vacancies.ParentStartup(ctx, vacancy.StartupID)
	if err == nil {
		view.StartupName = parent.Name
		view.StartupCreatorID = parent.CreatorID
		view.IsEffectivelyHeld = vacancy.Status == moderation.StatusHeld ||
			parent.Status == moderation.StatusHeld
	}

	return view
}

func (s *Server) vacancyViews(ctx context.Context, session *auth.Session, vacancies []*domain.Vacancy) []vacancyView {
	views := make([]vacancyView, 0, len(vacancies))
	for _, v := range vacancies {
		views = append(views, s.vacancyView(ctx, session, v))
	}
	return views
}

// userSummary is the minimal listing entry for the admin user picker.
type userSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func userSummaries(users []*domain.User) []userSummary {
	summaries := make([]userSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, userSummary{ID: u.ID, Username: u.Username})
	}
	return summaries
}

func sessionUserID(session *auth.Session) int64 {
	if session == nil {
		return 0
	}
	return session.UserID
}
