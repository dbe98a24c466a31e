package domain

import "errors"

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrDuplicateCard      = errors.New("duplicate card id")
	ErrSessionNotFound    = errors.New("session not found")
	ErrStaleRequest       = errors.New("superseded by a newer request")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
