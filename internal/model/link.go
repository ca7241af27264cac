package model

import "time"

// LinkState tracks whether a host connection has been claimed by a player
type LinkState string

const (
	LinkStatePending LinkState = "pending" // issued, waiting for a login
	LinkStateActive  LinkState = "active"  // a player connected through it
)

// Link ties a host-side connection to the identifiers handed to the login frame.
type Link struct {
	GCID        string
	DCID        string
	State       LinkState
	Name        string
	Managed     *string // login name when the player is host-managed
	Language    string
	Logout      bool
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// IsActive reports whether a player has connected through the link.
func (l *Link) IsActive() bool {
	return l.State == LinkStateActive
}
