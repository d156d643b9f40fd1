package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/startup"
	"github.com/yourfuture/platform/internal/user"
	"github.com/yourfuture/platform/internal/vacancy"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON with username and password"))
		return
	}

	created, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Registration successful", "profile", created)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON with username and password"))
		return
	}

	found, token, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token,
		"profile":      found,
	})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	session := sessionFrom(c)

	profile, err := s.users.Get(c.Request.Context(), session.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile loaded", "profile", profile)
}

type profileRequest struct {
	FullName   *string `json:"full_name"`
	Telegram   *string `json:"telegram"`
	ResumeLink *string `json:"resume_link"`
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	session := sessionFrom(c)

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON"))
		return
	}

	updated, err := s.users.UpdateProfile(c.Request.Context(), session.UserID, userProfileUpdate(req))
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile updated", "profile", updated)
}

func (s *Server) handleListUsers(c *gin.Context) {
	session := sessionFrom(c)

	users, err := s.users.ListOthers(c.Request.Context(), session.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Users loaded", "users", userSummaries(users))
}

func (s *Server) handleListStartups(c *gin.Context) {
	session := sessionFrom(c)
	mineOnly := c.Query("filter_by_creator") == "true"

	startups, err := s.startups.List(c.Request.Context(), session, mineOnly)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Startups loaded", "startups", s.startupViews(c.Request.Context(), startups))
}

func (s *Server) handleGetStartup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, apperr.NewValidation("id must be a positive integer"))
		return
	}

	found, err := s.startups.Get(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Startup loaded", "startup", s.startupView(c.Request.Context(), found))
}

type createStartupRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	OpenseaLink  string `json:"opensea_link"`
	CurrentStage string `json:"current_stage"`
}

func (s *Server) handleCreateStartup(c *gin.Context) {
	session := sessionFrom(c)

	var req createStartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON"))
		return
	}

	creator, err := s.users.Get(c.Request.Context(), session.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	created, err := s.startups.Create(c.Request.Context(), creator, startupCreateInput(req))
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Startup submitted for moderation", "startup", s.startupView(c.Request.Context(), created))
}

func (s *Server) handleUpdateFunds(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	var amounts map[string]string
	if err := c.ShouldBindJSON(&amounts); err != nil {
		s.fail(c, apperr.NewValidation("request body must map currency codes to amounts"))
		return
	}

	updated, err := s.startups.UpdateFunds(c.Request.Context(), sessionFrom(c), id, amounts, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Funds updated", "startup", s.startupView(c.Request.Context(), updated))
}

func (s *Server) handleUpdateTimeline(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	var updates map[string]*string
	if err := c.ShouldBindJSON(&updates); err != nil {
		s.fail(c, apperr.NewValidation("request body must map stages to dates or null"))
		return
	}

	updated, err := s.startups.UpdateTimeline(c.Request.Context(), sessionFrom(c), id, updates, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Timeline updated", "startup", s.startupView(c.Request.Context(), updated))
}

func (s *Server) handleApproveStartup(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	updated, err := s.startups.Approve(c.Request.Context(), sessionFrom(c), id, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Startup approved", "startup", s.startupView(c.Request.Context(), updated))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRejectStartup(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON with a reason"))
		return
	}

	updated, err := s.startups.Reject(c.Request.Context(), sessionFrom(c), id, req.Reason, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Startup rejected", "startup", s.startupView(c.Request.Context(), updated))
}

func (s *Server) handleToggleHoldStartup(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	updated, err := s.startups.ToggleHold(c.Request.Context(), sessionFrom(c), id, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Startup hold toggled", "startup", s.startupView(c.Request.Context(), updated))
}

type stageRequest struct {
	Stage string `json:"stage"`
}

func (s *Server) handleAdvanceStage(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON with a stage"))
		return
	}

	updated, err := s.startups.AdvanceStage(c.Request.Context(), sessionFrom(c), id, req.Stage, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Stage advanced", "startup", s.startupView(c.Request.Context(), updated))
}

func (s *Server) handleListVacancies(c *gin.Context) {
	session := sessionFrom(c)
	mineOnly := c.Query("filter_by_creator") == "true"

	vacancies, err := s.vacancies.List(c.Request.Context(), session, mineOnly)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Vacancies loaded", "vacancies", s.vacancyViews(c.Request.Context(), session, vacancies))
}

func (s *Server) handleGetVacancy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, apperr.NewValidation("id must be a positive integer"))
		return
	}

	session := sessionFrom(c)
	found, err := s.vacancies.Get(c.Request.Context(), session, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Vacancy loaded", "vacancy", s.vacancyView(c.Request.Context(), session, found))
}

type createVacancyRequest struct {
	StartupID    int64  `json:"startup_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Salary       string `json:"salary"`
	Workload     string `json:"workload"`
	WorkFormat   string `json:"work_format"`
}

func (s *Server) handleCreateVacancy(c *gin.Context) {
	session := sessionFrom(c)

	var req createVacancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON"))
		return
	}

	created, err := s.vacancies.Create(c.Request.Context(), session, vacancyCreateInput(req))
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Vacancy submitted for moderation", "vacancy", s.vacancyView(c.Request.Context(), session, created))
}

func (s *Server) handleApproveVacancy(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	session := sessionFrom(c)
	updated, err := s.vacancies.Approve(c.Request.Context(), session, id, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Vacancy approved", "vacancy", s.vacancyView(c.Request.Context(), session, updated))
}

func (s *Server) handleRejectVacancy(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON with a reason"))
		return
	}

	session := sessionFrom(c)
	updated, err := s.vacancies.Reject(c.Request.Context(), session, id, req.Reason, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Vacancy rejected", "vacancy", s.vacancyView(c.Request.Context(), session, updated))
}

func (s *Server) handleToggleHoldVacancy(c *gin.Context) {
	id, version, ok := s.mutationTarget(c)
	if !ok {
		return
	}

	session := sessionFrom(c)
	updated, err := s.vacancies.ToggleHold(c.Request.Context(), session, id, version)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Vacancy hold toggled", "vacancy", s.vacancyView(c.Request.Context(), session, updated))
}

func (s *Server) handleApplyVacancy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, apperr.NewValidation("id must be a positive integer"))
		return
	}

	session := sessionFrom(c)
	applicant, err := s.users.Get(c.Request.Context(), session.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	updated, err := s.vacancies.Apply(c.Request.Context(), applicant, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Application submitted", "vacancy", s.vacancyView(c.Request.Context(), session, updated))
}

func (s *Server) handleDeleteVacancy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, apperr.NewValidation("id must be a positive integer"))
		return
	}

	if err := s.vacancies.Delete(c.Request.Context(), sessionFrom(c), id); err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Vacancy deleted", "", nil)
}

type notificationRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleSendNotification(c *gin.Context) {
	targetID, ok := pathID(c)
	if !ok {
		s.fail(c, apperr.NewValidation("id must be a positive integer"))
		return
	}

	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.NewValidation("request body must be JSON with a message"))
		return
	}

	sent, err := s.notifications.Send(c.Request.Context(), sessionFrom(c), targetID, req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Notification sent", "notification", sent)
}

func (s *Server) handleListNotifications(c *gin.Context) {
	inbox, err := s.notifications.ListFor(c.Request.Context(), sessionFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Notifications loaded", "notifications", inbox)
}

func (s *Server) handleHealth(c *gin.Context) {
	results, healthy := s.health.Check(c.Request.Context())

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"status": statusWord(healthy), "components": results})
}

func statusWord(healthy bool) string {
	if healthy {
		return "ok"
	}
	return "degraded"
}

func userProfileUpdate(req profileRequest) user.ProfileUpdate {
	return user.ProfileUpdate{
		FullName:   req.FullName,
		Telegram:   req.Telegram,
		ResumeLink: req.ResumeLink,
	}
}

func startupCreateInput(req createStartupRequest) startup.CreateInput {
	return startup.CreateInput{
		Name:         req.Name,
		Description:  req.Description,
		OpenseaLink:  req.OpenseaLink,
		CurrentStage: req.CurrentStage,
	}
}

func vacancyCreateInput(req createVacancyRequest) vacancy.CreateInput {
	return vacancy.CreateInput{
		StartupID:    req.StartupID,
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Salary:       req.Salary,
		Workload:     req.Workload,
		WorkFormat:   req.WorkFormat,
	}
}

// mutationTarget parses the common {id} + If-Match pair every entity
// mutation uses.
func (s *Server) mutationTarget(c *gin.Context) (id, version int64, ok bool) {
	id, ok = pathID(c)
	if !ok {
		s.fail(c, apperr.NewValidation("id must be a positive integer"))
		return 0, 0, false
	}

	version, ok = ifMatchVersion(c)
	if !ok {
		s.fail(c, apperr.NewValidation("If-Match must carry a positive integer version"))
		return 0, 0, false
	}

	return id, version, true
}
