package summarize

import "errors"

var (
	// ErrGeneratorRequired is returned when a Summarizer is created without a generator.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyInstruction is returned for a blank system instruction.
	ErrEmptyInstruction = errors.New("summary instruction cannot be empty")

	// ErrInvalidTemperature is returned for a temperature outside [0, 2].
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")
)
