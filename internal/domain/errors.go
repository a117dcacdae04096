package domain

import "errors"

var (
	// ErrValidation covers malformed truth values, missing parent atoms and
	// task roles with no registered agent.
	ErrValidation = errors.New("validation failed")
	// ErrCycle is returned when a workflow's dependency graph is not acyclic.
	ErrCycle = errors.New("workflow dependency cycle")
	// ErrDependency is returned when a task references a dependency id that
	// does not exist.
	ErrDependency = errors.New("unknown task dependency")
	// ErrExternalTool wraps a non-zero exit or unparsable output from a
	// wrapped analysis executable.
	ErrExternalTool = errors.New("external tool failed")
	// ErrTimeout is returned when a bounded external call exceeds its deadline.
	ErrTimeout = errors.New("external tool timed out")
)
