package translation

import (
	"errors"

	"instant-translator/internal/language"
)

// Sentinel errors. Use errors.Is to classify a pipeline failure.
var (
	ErrModelUnavailable   = errors.New("translation model unavailable")
	ErrTranslationFailed  = errors.New("translation failed")
	ErrEngineConstruction = errors.New("translation engine construction failed")
	ErrServiceUnavailable = errors.New("translation service unavailable")
	ErrEngineClosed       = errors.New("translation engine closed")
)

// Kind classifies where in the pipeline a failure happened.
type Kind int

const (
	KindModelUnavailable Kind = iota + 1
	KindTranslationFailed
	KindEngineConstruction
)

func (k Kind) sentinel() error {
	switch k {
	case KindModelUnavailable:
		return ErrModelUnavailable
	case KindTranslationFailed:
		return ErrTranslationFailed
	case KindEngineConstruction:
		return ErrEngineConstruction
	default:
		return ErrServiceUnavailable
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindModelUnavailable:
		return "model_unavailable"
	case KindTranslationFailed:
		return "translation_failed"
	case KindEngineConstruction:
		return "engine_construction_failed"
	default:
		return "unknown"
	}
}

// Error is a pipeline failure for one language pair. Its message is the
// underlying cause, so it can be shown to the user as is.
type Error struct {
	Kind Kind
	Pair language.Pair
	Err  error
}

// NewError wraps err. A nil err is reported as ErrServiceUnavailable.
func NewError(kind Kind, pair language.Pair, err error) *Error {
	if err == nil {
		err = ErrServiceUnavailable
	}
	return &Error{Kind: kind, Pair: pair, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ErrServiceUnavailable.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}
