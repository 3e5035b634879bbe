package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Content errors
	ErrContentNotFound    = errors.New("content not found")
	ErrRevisionNotFound   = errors.New("revision not found")
	ErrIdentifierTaken    = errors.New("identifier already in use")
	ErrMissingContentID   = errors.New("content must be saved before revisions can attach")
	ErrPublishNotAllowed  = errors.New("not allowed to publish this content")
	ErrRenderLoop         = errors.New("re-entrant render detected")

	// Persistence errors
	ErrCouldNotSave   = errors.New("could not save")
	ErrCouldNotDelete = errors.New("could not delete")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidType   = errors.New("invalid content type")
	ErrInvalidStatus = errors.New("invalid content status")
)
