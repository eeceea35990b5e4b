package practice

import (
	"errors"
	"fmt"
)

// Kind classifies recoverable failures reported by collaborators.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindNoTargetAvailable
	KindNoSpeechUnderstood
	KindSpeechServiceUnavailable
	KindGenerationError
	KindUnknownIntent
)

func (k Kind) String() string {
	switch k {
	case KindNoTargetAvailable:
		return "NoTargetAvailable"
	case KindNoSpeechUnderstood:
		return "NoSpeechUnderstood"
	case KindSpeechServiceUnavailable:
		return "SpeechServiceUnavailable"
	case KindGenerationError:
		return "GenerationError"
	case KindUnknownIntent:
		return "UnknownIntent"
	default:
		return "Unknown"
	}
}

// Message is the user-facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case KindNoTargetAvailable:
		return "Nothing to practice yet. Using the default word."
	case KindNoSpeechUnderstood:
		return "Sorry, I couldn't understand. Try again."
	case KindSpeechServiceUnavailable:
		return "The speech service is not responding. Try again."
	case KindGenerationError:
		return "Could not reach the text generator."
	case KindUnknownIntent:
		return "Unsupported request."
	default:
		return "Something went wrong."
	}
}

// Error is a classified failure. Errors with the same Kind match under
// errors.Is when the target carries no wrapped error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels such as ErrNoSpeechUnderstood.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Op == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrNoTargetAvailable        = &Error{Kind: KindNoTargetAvailable}
	ErrNoSpeechUnderstood       = &Error{Kind: KindNoSpeechUnderstood}
	ErrSpeechServiceUnavailable = &Error{Kind: KindSpeechServiceUnavailable}
	ErrGenerationError          = &Error{Kind: KindGenerationError}
	ErrUnknownIntent            = &Error{Kind: KindUnknownIntent}
)

// ErrInvalidTransition is returned when an operation is not allowed in the current state.
var ErrInvalidTransition = errors.New("practice: invalid state transition")

// Wrap classifies err under kind unless it already carries a kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return &Error{Kind: kind, Op: op}
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
