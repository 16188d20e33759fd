package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionCompleted   = errors.New("session already completed a quoting cycle")
	ErrQuoteNotReady      = errors.New("session has no quote to book")
	ErrEmptyDocument      = errors.New("document content is empty or too short")
	ErrThreadLocked       = errors.New("conversation thread is locked by another writer")
)
