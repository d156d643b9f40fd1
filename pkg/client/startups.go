package client

import (
	"context"
	"fmt"
	"net/http"
)

type startupEnvelope struct {
	Startup *Startup `json:"startup"`
}

type startupListEnvelope struct {
	Startups []Startup `json:"startups"`
}

// ListStartups fetches the listing and replaces the whole startup
// cache. Toggling mineOnly always re-issues the request; the filter
// depends on server-side authorization context.
func (c *Client) ListStartups(ctx context.Context, mineOnly bool) ([]Startup, error) {
	path := "/startups"
	if mineOnly {
		path += "?filter_by_creator=true"
	}

	var resp startupListEnvelope
	if err := c.call(ctx, http.MethodGet, path, nil, 0, &resp); err != nil {
		return nil, err
	}

	c.startups.replaceAll(resp.Startups)
	return resp.Startups, nil
}

// CachedStartup returns the locally cached copy.
func (c *Client) CachedStartup(id int64) (Startup, bool) {
	return c.startups.get(id)
}

// CachedStartups returns the cached listing in server order.
func (c *Client) CachedStartups() []Startup {
	return c.startups.all()
}

// StartupSubmission is the creation form.
type StartupSubmission struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	OpenseaLink  string `json:"opensea_link,omitempty"`
	CurrentStage string `json:"current_stage"`
}

// CreateStartup checks the profile preconditions locally, submits, and
// caches the created entity.
func (c *Client) CreateStartup(ctx context.Context, submission StartupSubmission) (*Startup, error) {
	if err := c.requireProfileComplete(); err != nil {
		return nil, err
	}

	var resp startupEnvelope
	if err := c.call(ctx, http.MethodPost, "/startups", submission, 0, &resp); err != nil {
		return nil, err
	}

	c.startups.replace(*resp.Startup)
	return resp.Startup, nil
}

// UpdateStartupFunds replaces the funds ledger. ifMatch carries the
// version last seen; zero skips the precondition.
func (c *Client) UpdateStartupFunds(ctx context.Context, id int64, amounts map[string]string, ifMatch int64) (*Startup, error) {
	return c.startupMutation(ctx, http.MethodPut, fmt.Sprintf("/startups/%d/funds", id), amounts, ifMatch)
}

// UpdateStartupTimeline merges planned stage dates; nil clears a key.
func (c *Client) UpdateStartupTimeline(ctx context.Context, id int64, updates map[string]*string, ifMatch int64) (*Startup, error) {
	return c.startupMutation(ctx, http.MethodPut, fmt.Sprintf("/startups/%d/timeline", id), updates, ifMatch)
}

// ApproveStartup publishes a pending startup (admin).
func (c *Client) ApproveStartup(ctx context.Context, id int64, ifMatch int64) (*Startup, error) {
	return c.startupMutation(ctx, http.MethodPut, fmt.Sprintf("/startups/%d/approve", id), nil, ifMatch)
}

// RejectStartup declines a pending startup with a reason (admin).
func (c *Client) RejectStartup(ctx context.Context, id int64, reason string, ifMatch int64) (*Startup, error) {
	body := map[string]string{"reason": reason}
	return c.startupMutation(ctx, http.MethodPut, fmt.Sprintf("/startups/%d/reject", id), body, ifMatch)
}

// ToggleStartupHold flips approved↔held (admin).
func (c *Client) ToggleStartupHold(ctx context.Context, id int64, ifMatch int64) (*Startup, error) {
	return c.startupMutation(ctx, http.MethodPut, fmt.Sprintf("/startups/%d/toggle_hold", id), nil, ifMatch)
}

// AdvanceStartupStage moves the current stage forward (admin).
func (c *Client) AdvanceStartupStage(ctx context.Context, id int64, stage string, ifMatch int64) (*Startup, error) {
	body := map[string]string{"stage": stage}
	return c.startupMutation(ctx, http.MethodPut, fmt.Sprintf("/startups/%d/stage", id), body, ifMatch)
}

// startupMutation runs the request and wholesale-replaces the cached
// copy with the canonical entity from the response.
func (c *Client) startupMutation(ctx context.Context, method, path string, body any, ifMatch int64) (*Startup, error) {
	var resp startupEnvelope
	if err := c.call(ctx, method, path, body, ifMatch, &resp); err != nil {
		return nil, err
	}

	c.startups.replace(*resp.Startup)
	return resp.Startup, nil
}
