package taxonomy

import "fmt"

// CompileError indicates a rule source could not be compiled. It is fatal at
// startup: the process refuses to run with a partially valid rule set.
type CompileError struct {
	// File is the rule source that failed.
	File string

	// Reason describes what was wrong.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("taxonomy compile failed for %q: %s: %v", e.File, e.Reason, e.Err)
	}
	return fmt.Sprintf("taxonomy compile failed for %q: %s", e.File, e.Reason)
}

// Unwrap returns the underlying error for error chain support.
func (e *CompileError) Unwrap() error {
	return e.Err
}
