package client

import "sync"

// Profile mirrors the server's profile envelope.
type Profile struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	FullName   string `json:"full_name"`
	Telegram   string `json:"telegram"`
	ResumeLink string `json:"resume_link"`
}

// ProfileUpdate carries the fields to change; nil leaves a field as is.
type ProfileUpdate struct {
	FullName   *string `json:"full_name,omitempty"`
	Telegram   *string `json:"telegram,omitempty"`
	ResumeLink *string `json:"resume_link,omitempty"`
}

// Startup mirrors the server's startup envelope.
type Startup struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	FundsRaised       map[string]string  `json:"funds_raised"`
	OpenseaLink       string             `json:"opensea_link"`
	Status            string             `json:"status"`
	RejectionReason   string             `json:"rejection_reason"`
	CreatorID         int64              `json:"creator_user_id"`
	CurrentStage      string             `json:"current_stage"`
	Timeline          map[string]*string `json:"stage_timeline"`
	Version           int64              `json:"version"`
	CreatorUsername   string             `json:"creator_username"`
	CreatorTelegram   string             `json:"creator_telegram"`
	CreatorResumeLink string             `json:"creator_resume_link"`
}

// Applicant mirrors the contact snapshot stored per application.
type Applicant struct {
	UserID     int64  `json:"user_id"`
	Telegram   string `json:"telegram"`
	ResumeLink string `json:"resume_link"`
}

// Vacancy mirrors the server's vacancy envelope.
type Vacancy struct {
	ID                   int64       `json:"id"`
	StartupID            int64       `json:"startup_id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Requirements         string      `json:"requirements"`
	Salary               string      `json:"salary"`
	Workload             string      `json:"workload"`
	WorkFormat           string      `json:"work_format"`
	Applicants           []Applicant `json:"applicants"`
	Status               string      `json:"status"`
	RejectionReason      string      `json:"rejection_reason"`
	CreatorID            int64       `json:"creator_user_id"`
	Version              int64       `json:"version"`
	StartupName          string      `json:"startup_name"`
	StartupCreatorID     int64       `json:"startup_creator_id"`
	ApplicantCount       int         `json:"applicant_count"`
	ApplicantsRestricted bool        `json:"applicants_restricted"`
	IsEffectivelyHeld    bool        `json:"is_effectively_held"`
}

// Notification mirrors the server's notification envelope.
type Notification struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	AdminID int64  `json:"admin_id"`
	Message string `json:"message"`
	IsRead  bool   `json:"is_read"`
}

type identifiable interface {
	id() int64
}

func (s Startup) id() int64 { return s.ID }
func (v Vacancy) id() int64 { return v.ID }

// entityCache holds the last server truth per entity id. Replacement is
// always wholesale; fields are never merged.
type entityCache[T identifiable] struct {
	mu      sync.RWMutex
	byID    map[int64]T
	listing []int64
}

func newEntityCache[T identifiable]() *entityCache[T] {
	return &entityCache[T]{byID: make(map[int64]T)}
}

// replaceAll installs a fresh listing, dropping everything cached
// before. Used after every list fetch, including mine-only toggles.
func (c *entityCache[T]) replaceAll(entities []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byID = make(map[int64]T, len(entities))
	c.listing = c.listing[:0]
	for _, e := range entities {
		c.byID[e.id()] = e
		c.listing = append(c.listing, e.id())
	}
}

// replace swaps in the canonical entity from a mutation response.
func (c *entityCache[T]) replace(entity T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, known := c.byID[entity.id()]; !known {
		c.listing = append([]int64{entity.id()}, c.listing...)
	}
	c.byID[entity.id()] = entity
}

func (c *entityCache[T]) remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.byID, id)
	for i, cached := range c.listing {
		if cached == id {
			c.listing = append(c.listing[:i], c.listing[i+1:]...)
			break
		}
	}
}

func (c *entityCache[T]) get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}

func (c *entityCache[T]) all() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.listing))
	for _, id := range c.listing {
		if e, ok := c.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (c *entityCache[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[int64]T)
	c.listing = nil
}
