// Package moderation implements the status machine shared by every
// moderated entity on the platform (startups and vacancies).
package moderation

// Status represents the moderation state of an entity.
type Status string

const (
	// StatusPending indicates the entity awaits an admin decision.
	StatusPending Status = "pending"
	// StatusApproved indicates the entity passed moderation and is public.
	StatusApproved Status = "approved"
	// StatusRejected indicates the entity was declined with a reason. Terminal.
	StatusRejected Status = "rejected"
	// StatusHeld indicates an approved entity temporarily pulled from the public listing.
	StatusHeld Status = "held"
)

// Valid reports whether s is one of the known moderation statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusHeld:
		return true
	}
	return false
}

// VisibleTo reports whether an entity with status s may be shown in full
// to the caller. Approved entities are visible to everyone; everything
// else only to an admin or the entity's creator.
func (s Status) VisibleTo(isAdmin, isCreator bool) bool {
	if s == StatusApproved {
		return true
	}
	return isAdmin || isCreator
}

// PubliclyListed reports whether entities with status s appear in the
// default public listing. Held entities are excluded even though they
// were once approved.
func (s Status) PubliclyListed() bool {
	return s == StatusApproved
}
