package ai

import "errors"

var (
	// ErrInvalidConfig indicates a required configuration value is missing or out of range.
	ErrInvalidConfig = errors.New("ai config: invalid")

	// ErrMissingCredential indicates the hosted API is configured without an API key.
	ErrMissingCredential = errors.New("ai config: missing credential")

	// ErrEmptyResponse indicates a service answered without any usable content.
	ErrEmptyResponse = errors.New("empty response from AI service")
)
