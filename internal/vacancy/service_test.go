package vacancy

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/domain"
	"github.com/yourfuture/platform/internal/moderation"
	"github.com/yourfuture/platform/internal/repository"
)

type mockVacancyRepo struct {
	mock.Mock
}

func (m *mockVacancyRepo) Create(ctx context.Context, v *domain.Vacancy) error {
	args := m.Called(ctx, v)
	if args.Error(0) == nil {
		v.ID = 1
	}
	return args.Error(0)
}

func (m *mockVacancyRepo) FindByID(ctx context.Context, id int64) (*domain.Vacancy, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.Vacancy)
	return v, args.Error(1)
}

func (m *mockVacancyRepo) List(ctx context.Context, filter repository.ListFilter) ([]*domain.Vacancy, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*domain.Vacancy)
	return list, args.Error(1)
}

func (m *mockVacancyRepo) Update(ctx context.Context, v *domain.Vacancy) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVacancyRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockVacancyRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

type mockStartupRepo struct {
	mock.Mock
}

func (m *mockStartupRepo) Create(ctx context.Context, s *domain.Startup) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStartupRepo) FindByID(ctx context.Context, id int64) (*domain.Startup, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.Startup)
	return s, args.Error(1)
}

func (m *mockStartupRepo) List(ctx context.Context, filter repository.ListFilter) ([]*domain.Startup, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*domain.Startup)
	return list, args.Error(1)
}

func (m *mockStartupRepo) Update(ctx context.Context, s *domain.Startup) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStartupRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok, "expected *apperr.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func approvedStartup(id, creatorID int64) *domain.Startup {
	return &domain.Startup{ID: id, Status: moderation.StatusApproved, CreatorID: creatorID, Version: 1}
}

func completeApplicant(id int64) *domain.User {
	return &domain.User{
		ID:         id,
		Username:   "applicant",
		Role:       domain.RoleUser,
		Telegram:   "@applicant",
		ResumeLink: "https://example.com/cv",
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	owner := &auth.Session{UserID: 7, Role: domain.RoleUser}

	validInput := func() CreateInput {
		return CreateInput{
			StartupID:   3,
			Title:       "Go engineer",
			Description: "backend work",
			Workload:    "20",
			WorkFormat:  "remote",
		}
	}

	testCases := []struct {
		name        string
		session     *auth.Session
		parent      *domain.Startup
		mutate      func(in *CreateInput)
		expectedErr string
	}{
		{
			name:    "owner posts under approved startup",
			session: owner,
			parent:  approvedStartup(3, 7),
		},
		{
			name:        "stranger forbidden",
			session:     &auth.Session{UserID: 99, Role: domain.RoleUser},
			parent:      approvedStartup(3, 7),
			expectedErr: "E103",
		},
		{
			name:        "pending startup not eligible",
			session:     owner,
			parent:      &domain.Startup{ID: 3, Status: moderation.StatusPending, CreatorID: 7},
			expectedErr: "E106",
		},
		{
			name:        "held startup not eligible",
			session:     owner,
			parent:      &domain.Startup{ID: 3, Status: moderation.StatusHeld, CreatorID: 7},
			expectedErr: "E106",
		},
		{
			name:        "bad workload",
			session:     owner,
			parent:      approvedStartup(3, 7),
			mutate:      func(in *CreateInput) { in.Workload = "25" },
			expectedErr: "E100",
		},
		{
			name:        "bad work format",
			session:     owner,
			parent:      approvedStartup(3, 7),
			mutate:      func(in *CreateInput) { in.WorkFormat = "moon" },
			expectedErr: "E100",
		},
		{
			name:        "missing title",
			session:     owner,
			parent:      approvedStartup(3, 7),
			mutate:      func(in *CreateInput) { in.Title = " " },
			expectedErr: "E100",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockVacancyRepo)
			startups := new(mockStartupRepo)
			startups.On("FindByID", mock.Anything, int64(3)).Return(tc.parent, nil).Once()
			if tc.expectedErr == "" {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.Vacancy) bool {
					return v.Status == moderation.StatusPending && v.StartupID == int64(3) && len(v.Applicants) == 0
				})).Return(nil).Once()
			}

			svc := NewService(repo, startups, testLogger())
			input := validInput()
			if tc.mutate != nil {
				tc.mutate(&input)
			}

			created, err := svc.Create(ctx, tc.session, input)
			if tc.expectedErr != "" {
				assertAppErrorCode(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), created.ID)
			}
			repo.AssertExpectations(t)
			startups.AssertExpectations(t)
		})
	}
}

func TestService_Apply(t *testing.T) {
	ctx := context.Background()

	storedVacancy := func(status moderation.Status, applicants ...domain.Applicant) *domain.Vacancy {
		return &domain.Vacancy{
			ID: 9, StartupID: 3, Title: "Go engineer",
			Status: status, CreatorID: 7, Version: 1,
			Applicants: applicants,
		}
	}

	t.Run("successful application snapshots contacts", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return(storedVacancy(moderation.StatusApproved), nil).Once()
		startups.On("FindByID", mock.Anything, int64(3)).
			Return(approvedStartup(3, 7), nil).Once()
		repo.On("Update", mock.Anything, mock.MatchedBy(func(v *domain.Vacancy) bool {
			return len(v.Applicants) == 1 &&
				v.Applicants[0].UserID == int64(42) &&
				v.Applicants[0].Telegram == "@applicant"
		})).Return(nil).Once()

		svc := NewService(repo, startups, testLogger())
		updated, err := svc.Apply(ctx, completeApplicant(42), 9)
		require.NoError(t, err)
		assert.True(t, updated.HasApplicant(42))
		repo.AssertExpectations(t)
		startups.AssertExpectations(t)
	})

	t.Run("duplicate application conflicts", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return(storedVacancy(moderation.StatusApproved, domain.Applicant{UserID: 42}), nil).Once()
		startups.On("FindByID", mock.Anything, int64(3)).
			Return(approvedStartup(3, 7), nil).Once()

		svc := NewService(repo, startups, testLogger())
		_, err := svc.Apply(ctx, completeApplicant(42), 9)
		assertAppErrorCode(t, err, "E105")
		repo.AssertExpectations(t)
	})

	t.Run("pending vacancy not accepting", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return(storedVacancy(moderation.StatusPending), nil).Once()

		svc := NewService(repo, startups, testLogger())
		_, err := svc.Apply(ctx, completeApplicant(42), 9)
		assertAppErrorCode(t, err, "E106")
		repo.AssertExpectations(t)
	})

	t.Run("held parent startup blocks applications", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return(storedVacancy(moderation.StatusApproved), nil).Once()
		startups.On("FindByID", mock.Anything, int64(3)).
			Return(&domain.Startup{ID: 3, Status: moderation.StatusHeld, CreatorID: 7}, nil).Once()

		svc := NewService(repo, startups, testLogger())
		_, err := svc.Apply(ctx, completeApplicant(42), 9)
		assertAppErrorCode(t, err, "E106")
		repo.AssertExpectations(t)
		startups.AssertExpectations(t)
	})

	t.Run("incomplete profile rejected", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return(storedVacancy(moderation.StatusApproved), nil).Once()
		startups.On("FindByID", mock.Anything, int64(3)).
			Return(approvedStartup(3, 7), nil).Once()

		svc := NewService(repo, startups, testLogger())
		_, err := svc.Apply(ctx, &domain.User{ID: 42, Username: "applicant"}, 9)
		assertAppErrorCode(t, err, "E100")
		repo.AssertExpectations(t)
	})
}

func TestService_Approve_ParentNoLongerApproved(t *testing.T) {
	ctx := context.Background()
	admin := &auth.Session{UserID: 1, Role: domain.RoleAdmin}

	repo := new(mockVacancyRepo)
	startups := new(mockStartupRepo)
	repo.On("FindByID", mock.Anything, int64(9)).
		Return(&domain.Vacancy{ID: 9, StartupID: 3, Status: moderation.StatusPending, Version: 1}, nil).Once()
	startups.On("FindByID", mock.Anything, int64(3)).
		Return(&domain.Startup{ID: 3, Status: moderation.StatusHeld}, nil).Once()

	svc := NewService(repo, startups, testLogger())
	_, err := svc.Approve(ctx, admin, 9, 0)
	assertAppErrorCode(t, err, "E106")
	repo.AssertExpectations(t)
	startups.AssertExpectations(t)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return(&domain.Vacancy{ID: 9, CreatorID: 7, Status: moderation.StatusApproved}, nil).Once()
		repo.On("Delete", mock.Anything, int64(9)).Return(nil).Once()

		svc := NewService(repo, startups, testLogger())
		require.NoError(t, svc.Delete(ctx, &auth.Session{UserID: 7, Role: domain.RoleUser}, 9))
		repo.AssertExpectations(t)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return(&domain.Vacancy{ID: 9, CreatorID: 7, Status: moderation.StatusApproved}, nil).Once()

		svc := NewService(repo, startups, testLogger())
		err := svc.Delete(ctx, &auth.Session{UserID: 99, Role: domain.RoleUser}, 9)
		assertAppErrorCode(t, err, "E103")
		repo.AssertExpectations(t)
	})

	t.Run("missing vacancy", func(t *testing.T) {
		repo := new(mockVacancyRepo)
		startups := new(mockStartupRepo)
		repo.On("FindByID", mock.Anything, int64(9)).
			Return((*domain.Vacancy)(nil), repository.ErrNotFound).Once()

		svc := NewService(repo, startups, testLogger())
		err := svc.Delete(ctx, &auth.Session{UserID: 7, Role: domain.RoleUser}, 9)
		assertAppErrorCode(t, err, "E104")
		repo.AssertExpectations(t)
	})
}
