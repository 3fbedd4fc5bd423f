package exitcode

import "errors"

const (
	Success = 0

	// The manifest could not be loaded or concatenation reported errors
	Failure = 1

	// The command line itself is wrong
	Usage = 2
)

type Coder interface {
	error
	ExitCode() int
}

// Get returns Success for nil, the code of the first Coder in the chain, or
// Failure for any other error.
func Get(err error) int {
	if err == nil {
		return Success
	}

	if coder := Coder(nil); errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return Failure
}

// Set wraps an error in a Coder. The message and the error chain are kept.
func Set(err error, code int) error {
	if err == nil {
		return nil
	}
	return coder{err, code}
}

var _ Coder = coder{}

type coder struct {
	error
	code int
}

func (co coder) ExitCode() int {
	return co.code
}

func (co coder) Unwrap() error {
	return co.error
}
