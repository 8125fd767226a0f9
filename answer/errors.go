package answer

import "errors"

// ErrGeneratorRequired is returned when an Orchestrator is created without a generator.
var ErrGeneratorRequired = errors.New("generator required")
