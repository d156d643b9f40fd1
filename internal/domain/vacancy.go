package domain

import (
	"time"

	"github.com/yourfuture/platform/internal/moderation"
)

// Workload is the weekly hour commitment of a vacancy. Closed set.
type Workload string

const (
	Workload20       Workload = "20"
	Workload30       Workload = "30"
	Workload40       Workload = "40"
	WorkloadFlexible Workload = "flexible"
)

// Valid reports whether w is one of the accepted workloads.
func (w Workload) Valid() bool {
	switch w {
	case Workload20, Workload30, Workload40, WorkloadFlexible:
		return true
	}
	return false
}

// WorkFormat is where the vacancy is carried out. Closed set.
type WorkFormat string

const (
	WorkFormatRemote WorkFormat = "remote"
	WorkFormatOffice WorkFormat = "office"
	WorkFormatHybrid WorkFormat = "hybrid"
)

// Valid reports whether f is one of the accepted work formats.
func (f WorkFormat) Valid() bool {
	switch f {
	case WorkFormatRemote, WorkFormatOffice, WorkFormatHybrid:
		return true
	}
	return false
}

// Applicant is the point-in-time contact snapshot recorded when a user
// applies. It is not live-linked to the evolving profile.
type Applicant struct {
	UserID     int64  `json:"user_id"`
	Telegram   string `json:"telegram"`
	ResumeLink string `json:"resume_link"`
}

// Vacancy is a job posting scoped to one approved startup, sharing the
// moderation lifecycle.
type Vacancy struct {
	ID              int64             `json:"id"`
	StartupID       int64             `json:"startup_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Requirements    string            `json:"requirements"`
	Salary          string            `json:"salary"`
	Workload        Workload          `json:"workload"`
	WorkFormat      WorkFormat        `json:"work_format"`
	Applicants      []Applicant       `json:"applicants"`
	Status          moderation.Status `json:"status"`
	RejectionReason string            `json:"rejection_reason"`
	CreatorID       int64             `json:"creator_user_id"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OwnedBy reports whether the vacancy was created by userID.
func (v *Vacancy) OwnedBy(userID int64) bool {
	return v != nil && v.CreatorID == userID
}

// HasApplicant reports whether userID already applied.
func (v *Vacancy) HasApplicant(userID int64) bool {
	if v == nil {
		return false
	}
	for _, a := range v.Applicants {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
