package broker

import (
	"errors"
	"fmt"
	"net/http"
)

type FetchErrorKind string

const (
	AddressMalformed   FetchErrorKind = "address_malformed"
	NetworkUnreachable FetchErrorKind = "network_unreachable"
	HTTPStatus         FetchErrorKind = "http_status"
	Decode             FetchErrorKind = "decode"
)

// FetchError is the single failure type of a fetch. Callers that only care
// whether the fetch failed can ignore the kind.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (fe *FetchError) Error() string {
	switch fe.Kind {
	case AddressMalformed:
		return fmt.Sprintf("invalid server address: %v", fe.Err)
	case NetworkUnreachable:
		return fmt.Sprintf("could not reach server: %v", fe.Err)
	case HTTPStatus:
		return fmt.Sprintf("server responded with HTTP %d %s", fe.StatusCode, http.StatusText(fe.StatusCode))
	case Decode:
		return fmt.Sprintf("unexpected response from server: %v", fe.Err)
	default:
		return fmt.Sprintf("fetch failed: %v", fe.Err)
	}
}

func (fe *FetchError) Unwrap() error {
	return fe.Err
}

// KindOf returns the kind of a fetch failure, or "unknown" for errors produced elsewhere.
func KindOf(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	return "unknown"
}
