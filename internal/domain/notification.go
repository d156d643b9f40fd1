package domain

import "time"

// Notification is a message an administrator stored against a user.
// Delivery beyond this record is handled outside the platform.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	AdminID   int64     `json:"admin_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"timestamp"`
}
