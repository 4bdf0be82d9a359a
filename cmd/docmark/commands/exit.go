package commands

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	checkcmd "github.com/goliatone/go-docmark/internal/commands/check"
)

// exitError carries an explicit exit code. Silent errors have already been
// reported through the printer.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: ExitUsage, err: err}
}

// failed marks a run whose results were printed and did not pass.
func failed() error {
	return &exitError{code: ExitFail, err: errValidationFailed, silent: true}
}

func isSilent(err error) bool {
	var exit *exitError
	return errors.As(err, &exit) && exit.silent
}

func exitCode(err error) int {
	if err == nil {
		return ExitPass
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	if checkcmd.IsParseFailure(err) || goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return ExitFail
	}
	return ExitUsage
}
