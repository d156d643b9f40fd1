package client

import (
	"context"
	"fmt"
	"net/http"
)

type vacancyEnvelope struct {
	Vacancy *Vacancy `json:"vacancy"`
}

type vacancyListEnvelope struct {
	Vacancies []Vacancy `json:"vacancies"`
}

type notificationListEnvelope struct {
	Notifications []Notification `json:"notifications"`
}

// ListVacancies fetches the listing and replaces the whole vacancy
// cache.
func (c *Client) ListVacancies(ctx context.Context, mineOnly bool) ([]Vacancy, error) {
	path := "/vacancies"
	if mineOnly {
		path += "?filter_by_creator=true"
	}

	var resp vacancyListEnvelope
	if err := c.call(ctx, http.MethodGet, path, nil, 0, &resp); err != nil {
		return nil, err
	}

	c.vacancies.replaceAll(resp.Vacancies)
	return resp.Vacancies, nil
}

// CachedVacancy returns the locally cached copy.
func (c *Client) CachedVacancy(id int64) (Vacancy, bool) {
	return c.vacancies.get(id)
}

// CachedVacancies returns the cached listing in server order.
func (c *Client) CachedVacancies() []Vacancy {
	return c.vacancies.all()
}

// VacancySubmission is the posting form.
type VacancySubmission struct {
	StartupID    int64  `json:"startup_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements,omitempty"`
	Salary       string `json:"salary,omitempty"`
	Workload     string `json:"workload"`
	WorkFormat   string `json:"work_format"`
}

// CreateVacancy posts a vacancy under one of the caller's approved
// startups.
func (c *Client) CreateVacancy(ctx context.Context, submission VacancySubmission) (*Vacancy, error) {
	var resp vacancyEnvelope
	if err := c.call(ctx, http.MethodPost, "/vacancies", submission, 0, &resp); err != nil {
		return nil, err
	}

	c.vacancies.replace(*resp.Vacancy)
	return resp.Vacancy, nil
}

// Apply records an application. The profile precondition is checked
// locally first so an incomplete profile never hits the network.
func (c *Client) Apply(ctx context.Context, vacancyID int64) (*Vacancy, error) {
	if err := c.requireProfileComplete(); err != nil {
		return nil, err
	}

	return c.vacancyMutation(ctx, http.MethodPost, fmt.Sprintf("/vacancies/%d/apply", vacancyID), nil, 0)
}

// ApproveVacancy publishes a pending vacancy (admin).
func (c *Client) ApproveVacancy(ctx context.Context, id int64, ifMatch int64) (*Vacancy, error) {
	return c.vacancyMutation(ctx, http.MethodPut, fmt.Sprintf("/vacancies/%d/approve", id), nil, ifMatch)
}

// RejectVacancy declines a pending vacancy with a reason (admin).
func (c *Client) RejectVacancy(ctx context.Context, id int64, reason string, ifMatch int64) (*Vacancy, error) {
	body := map[string]string{"reason": reason}
	return c.vacancyMutation(ctx, http.MethodPut, fmt.Sprintf("/vacancies/%d/reject", id), body, ifMatch)
}

// ToggleVacancyHold flips approved↔held (admin).
func (c *Client) ToggleVacancyHold(ctx context.Context, id int64, ifMatch int64) (*Vacancy, error) {
	return c.vacancyMutation(ctx, http.MethodPut, fmt.Sprintf("/vacancies/%d/toggle_hold", id), nil, ifMatch)
}

// DeleteVacancy removes a posting and drops it from the cache.
func (c *Client) DeleteVacancy(ctx context.Context, id int64) error {
	if err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/vacancies/%d", id), nil, 0, nil); err != nil {
		return err
	}

	c.vacancies.remove(id)
	return nil
}

// Notifications fetches the caller's inbox.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var resp notificationListEnvelope
	if err := c.call(ctx, http.MethodGet, "/profile/notifications", nil, 0, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *Client) vacancyMutation(ctx context.Context, method, path string, body any, ifMatch int64) (*Vacancy, error) {
	var resp vacancyEnvelope
	if err := c.call(ctx, method, path, body, ifMatch, &resp); err != nil {
		return nil, err
	}

	c.vacancies.replace(*resp.Vacancy)
	return resp.Vacancy, nil
}
