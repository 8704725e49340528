package services

import "errors"

// Common service errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidState        = errors.New("invalid state")
	ErrDuplicate           = errors.New("duplicate record")
	ErrInvalidRecoveryCode = errors.New("recovery code invalid or expired")
)
