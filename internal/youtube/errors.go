package youtube

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrFetchFailure matches every error returned by Client once an upstream call
// has exhausted its retries or failed permanently.
var ErrFetchFailure = errors.New("youtube: fetch failure")

// ErrEmptyPlaylist is returned by LatestUpload when the playlist has no items.
var ErrEmptyPlaylist = errors.New("youtube: playlist is empty")

// FetchError describes a failed upstream call. StatusCode is zero when the last
// attempt never produced an HTTP response.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube %s: status %d after %d attempt(s): %v", e.Endpoint, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("youtube %s: failed after %d attempt(s): %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s: %s", http.StatusText(e.Code), e.Body)
}

// isRetryableStatus mirrors the transient statuses worth another attempt.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isClientError reports whether err is a caller-side 4xx (bad token, bad key).
// Those do not say anything about upstream health.
func isClientError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests
	}
	return false
}
