package domain

import (
	"time"

	"github.com/yourfuture/platform/internal/funds"
	"github.com/yourfuture/platform/internal/moderation"
	"github.com/yourfuture/platform/internal/stage"
)

// Startup is a moderated venture listing owned by its creator. Version
// increments on every mutation and backs the If-Match concurrency check.
type Startup struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	FundsRaised     funds.Ledger      `json:"funds_raised"`
	OpenseaLink     string            `json:"opensea_link"`
	Status          moderation.Status `json:"status"`
	RejectionReason string            `json:"rejection_reason"`
	CreatorID       int64             `json:"creator_user_id"`
	CurrentStage    stage.Stage       `json:"current_stage"`
	Timeline        stage.Timeline    `json:"stage_timeline"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OwnedBy reports whether the startup was created by userID.
func (s *Startup) OwnedBy(userID int64) bool {
	return s != nil && s.CreatorID == userID
}
