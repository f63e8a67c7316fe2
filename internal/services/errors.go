package services

import "errors"

var (
	// ErrNotFound covers both "does not exist" and "owned by another user";
	// callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInactiveUser        = errors.New("user account is inactive")
	ErrInvalidToken        = errors.New("invalid authentication token")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrGenerationFailed    = errors.New("failed to generate content")
	ErrEmptyImport         = errors.New("import contains no usable items")
	ErrAnswerCountMismatch = errors.New("number of answers doesn't match number of questions")
)
