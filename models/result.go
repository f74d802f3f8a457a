package models

import (
	"errors"

	"instant-translator/internal/translation"
)

// Result is either translated text or the reason the translation failed.
type Result struct {
	text string
	err  error
}

// Ok returns a successful result.
func Ok(text string) Result {
	return Result{text: text}
}

// Err returns a failed result. A nil err becomes ErrServiceUnavailable.
func Err(err error) Result {
	if err == nil {
		err = translation.ErrServiceUnavailable
	}
	return Result{err: err}
}

// Text returns the translated text; empty for a failed result.
func (r Result) Text() string {
	return r.text
}

// Err returns the failure, or nil for a successful result.
func (r Result) Err() error {
	return r.err
}

// IsErr reports whether the result is a failure.
func (r Result) IsErr() bool {
	return r.err != nil
}

// Is reports whether the failure matches target.
func (r Result) Is(target error) bool {
	return r.err != nil && errors.Is(r.err, target)
}

// Equal compares results by variant and by text or reason message.
func (r Result) Equal(other Result) bool {
	if r.IsErr() != other.IsErr() {
		return false
	}
	if r.IsErr() {
		return r.err.Error() == other.err.Error()
	}
	return r.text == other.text
}

// String returns the text, or the failure reason.
func (r Result) String() string {
	if r.err != nil {
		return r.err.Error()
	}
	return r.text
}
