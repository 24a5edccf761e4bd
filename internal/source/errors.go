package source

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch produced no usable data.
type Kind int

const (
	Transport Kind = iota + 1
	Structural
	Empty
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Structural:
		return "structural"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

var (
	ErrTransport  = errors.New("transport failure")
	ErrStructural = errors.New("structural failure")
	ErrEmpty      = errors.New("empty result")

	// ErrInvalidSymbol wraps a symbol with no letters left after cleaning.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

func (k Kind) sentinel() error {
	switch k {
	case Transport:
		return ErrTransport
	case Structural:
		return ErrStructural
	case Empty:
		return ErrEmpty
	}
	return nil
}

// FetchError is returned by every adapter instead of an empty dataset.
type FetchError struct {
	Mode string
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s fetch: %s", e.Mode, e.Kind)
	}
	return fmt.Sprintf("%s fetch: %s: %v", e.Mode, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *FetchError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf reports the kind of err, or 0 if it is not a FetchError.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
