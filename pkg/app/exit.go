package app

import "errors"

// Process exit codes. Anything else that fails exits 1 via ExitCode.
const (
	ExitOK               = 0
	ExitNothingToRelease = 1
	ExitCreateFailed     = 2
	ExitUpdateFailed     = 3
	ExitLabelFailed      = 4
)

// ExitError carries a specific process exit code alongside the cause.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "run failed"
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Run to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
