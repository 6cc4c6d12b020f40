// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a request carries no valid session.
// It must never result in an upstream call.
var ErrUnauthenticated = errors.New("authentication required")

// ErrUpstreamUnreachable is returned on a transport-level failure calling the
// CI backend. Callers can check for it using errors.Is.
var ErrUpstreamUnreachable = errors.New("upstream unreachable")

// ErrMalformedResponse is returned when an upstream body does not match the
// expected shape.
var ErrMalformedResponse = errors.New("malformed upstream response")

// UpstreamError carries a non-2xx upstream response. The original status and
// body are preserved so the gateway can relay them byte-for-byte.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream rejected request: status %d", e.Status)
}
