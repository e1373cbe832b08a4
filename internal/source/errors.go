package source

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable matches every fetch or decode failure.
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrUnknownScheme     = errors.New("unknown source scheme")
	ErrMalformed         = errors.New("payload is not valid JSON")
	ErrTooLarge          = errors.New("payload too large")
)

// UnavailableError reports why a source could not be loaded.
// errors.Is(err, ErrSourceUnavailable) holds for it.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}
