package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Renderer and client errors.
var (
	// ErrRenderUnavailable is returned when no headless browser can be started.
	// Callers treat it as "this strategy yields nothing" and move on.
	ErrRenderUnavailable = errors.New("headless browser is not available")

	// ErrRenderTimeout is returned when navigation does not finish in time.
	ErrRenderTimeout = errors.New("headless browser render timed out")

	// ErrInvalidProxyURL is returned when the proxy URL cannot be used.
	// Supported schemes are http, https, socks5 and socks5h.
	ErrInvalidProxyURL = errors.New("invalid proxy url: expected http, https, socks5 or socks5h scheme")

	errMissingHost = errors.New("missing host")
)

// FetchErrorKind classifies a failed fetch.
type FetchErrorKind int

const (
	// FetchTransient covers timeouts, 408, 429 and 5xx responses.
	FetchTransient FetchErrorKind = iota

	// FetchBlocked covers 403 responses and bot challenge pages.
	// The orchestrator escalates to the rendered strategy on this kind.
	FetchBlocked

	// FetchClientError covers the remaining 4xx responses (404, 410, ...).
	FetchClientError

	// FetchTransport covers dial, TLS and protocol failures.
	FetchTransport
)

// String returns a short name for the kind.
func (k FetchErrorKind) String() string {
	switch k {
	case FetchTransient:
		return "transient"
	case FetchBlocked:
		return "blocked"
	case FetchClientError:
		return "client_error"
	case FetchTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// FetchError describes a failed fetch. Status codes >= 400 are reported
// here with StatusCode set so they can be told apart from transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Kind       FetchErrorKind
	Err        error
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %s (status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsBlocked reports whether err is a FetchError of kind FetchBlocked.
func IsBlocked(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchBlocked
}

// IsTransient reports whether err is a FetchError of kind FetchTransient.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchTransient
}

// IsRetryEligible reports whether err is a failure another attempt could
// overcome: a blocked request or a transient one. Client errors such as 404
// and transport failures such as TLS errors are final. Nothing is retried
// within one frontier session.
func IsRetryEligible(err error) bool {
	return IsBlocked(err) || IsTransient(err)
}

// statusKind maps an error status code to its kind.
func statusKind(statusCode int) FetchErrorKind {
	switch {
	case statusCode == http.StatusForbidden:
		return FetchBlocked
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return FetchTransient
	default:
		return FetchClientError
	}
}

// transportKind maps a client error to its kind.
func transportKind(err error) FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTransient
	}
	return FetchTransport
}
