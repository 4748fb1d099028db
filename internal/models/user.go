// Package models defines the record families persisted in the local store:
// users, messages and auth sessions.
package models

import "time"

// Visibility controls whether a profile appears in discovery.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Location is the last known position of a user. LastUpdated drives the
// staleness check in discovery: fixes older than the staleness window are
// ignored regardless of distance.
type Location struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	LastUpdated time.Time `json:"last_updated"`
}

// Settings holds the per-user preference flags.
//
// Settings is merged shallowly on update: callers of users.Update must supply
// the whole struct, not just the field they change.
type Settings struct {
	Visibility      Visibility `json:"visibility"`
	Notifications   bool       `json:"notifications"`
	LocationSharing bool       `json:"location_sharing"`
}

// DefaultSettings are applied to every user created at login.
func DefaultSettings() Settings {
	return Settings{
		Visibility:      VisibilityPublic,
		Notifications:   true,
		LocationSharing: false,
	}
}

// User is a participant. Username is unique across all users; Location is nil
// until a position fix has ever been stored.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	ProfilePic  string    `json:"profile_pic"`
	Location    *Location `json:"location,omitempty"`
	Settings    Settings  `json:"settings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastActive  time.Time `json:"last_active"`
}

// UserUpdate carries a partial update for users.Update. Nil fields are left
// untouched. The merge is shallow: a non-nil Settings or Location replaces the
// stored value wholesale.
type UserUpdate struct {
	Username    *string
	Description *string
	ProfilePic  *string
	Location    *Location
	Settings    *Settings
}
