package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// User service specific errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// Matchmaking specific errors
var (
	ErrNoTopicsSelected = errors.New("no topics selected")
)

// Match lifecycle specific errors
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrNotParticipant   = errors.New("user is not a participant of this match")
	ErrInvalidOutcome   = errors.New("invalid outcome")
	ErrInvalidStatement = errors.New("statement too short")
)
