package user

import "errors"

// Error kinds reported in Result.Errors, test with errors.Is.
var (
	ErrConnection   = errors.New("connection failure")
	ErrValidation   = errors.New("validation failure")
	ErrNotFound     = errors.New("user not found")
	ErrDuplicate    = errors.New("duplicate user")
	ErrNotConnected = errors.New("manager not connected")
)
