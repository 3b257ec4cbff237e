package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNameTaken      = errors.New("name already taken")
	ErrInvalidName    = errors.New("invalid player name")
	ErrInvalidToken   = errors.New("invalid token")

	// Action batch errors
	ErrInvalidAction     = errors.New("malformed action")
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrInsufficientFunds = errors.New("insufficient score")
	ErrClickRateExceeded = errors.New("click rate exceeded")

	// Social graph errors
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendRequestExists   = errors.New("friend request already sent")
	ErrAlreadyFriends        = errors.New("players are already friends")
	ErrSelfFriendRequest     = errors.New("cannot befriend yourself")
)
