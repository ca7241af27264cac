package model

import "errors"

// Common errors used across the application
var (
	// Link errors
	ErrLinkNotFound = errors.New("link not found")
	ErrLinkActive   = errors.New("link is already active")

	// Login errors
	ErrDirectLoginUnsupported  = errors.New("direct login is not supported")
	ErrInvalidRegistrationName = errors.New("registration name must be of the form username:email")
	ErrEmptyPlayerName         = errors.New("player name is empty")
	ErrInvalidSelection        = errors.New("invalid player selection")

	// Embedding errors
	ErrEmptyAddress   = errors.New("userdata server address is empty")
	ErrInvalidOrigin  = errors.New("message origin does not match frame address")
	ErrInvalidAddress = errors.New("invalid userdata server address")

	// Transport errors
	ErrSessionClosed = errors.New("rpc session closed")

	// Configuration errors
	ErrNoUserdataServer = errors.New("either a default userdata server or local login must be configured")
)
