package recognizer

import "errors"

// FatalError marks an error as non-recoverable for the current session,
// e.g. missing model data. There is no degraded mode without an engine.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	if e == nil || e.Err == nil {
		return "fatal recognizer error"
	}
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewFatalError(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

func IsFatalError(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
