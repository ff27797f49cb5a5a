package orchestration

import "errors"

var (
	// ErrMissingRequiredField marks an action invoked without the data its
	// workflow needs. The workflow handler is never invoked on this path.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrUnknownAction marks a tool call naming an action this core does not
	// route.
	ErrUnknownAction = errors.New("unknown action")
)
