package content

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSlugRequired   = errors.New("content: slug is required")
	ErrKeyRequired    = errors.New("content: setting key is required")
	ErrStatusInvalid  = errors.New("content: status invalid")
	ErrAccessInvalid  = errors.New("content: access level invalid")
	ErrSecretRequired = errors.New("content: webhook secret is required")
)

// NotFoundError indicates a remote path or stored record is absent. For
// remote files it is treated as "deleted since listing" and skipped; deletion
// is never propagated to the store.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// AuthError indicates an invalid or missing credential, either against the
// remote source or on the webhook signature. It is never retried.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth failed: " + e.Reason
}

// RateLimitedError indicates the remote source refused the request due to
// rate limiting. Reset, when known, is the time the quota replenishes.
type RateLimitedError struct {
	Reset      time.Time
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if !e.Reset.IsZero() {
		return fmt.Sprintf("rate limited until %s", e.Reset.Format(time.RFC3339))
	}
	return "rate limited"
}

// ParseError indicates a file could not be parsed into a document. It is
// fatal for that single item only, never for the batch.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError indicates an upsert failure. Unavailable marks failures where
// the store itself is unreachable; the orchestrator aborts the remaining
// batch on those instead of retrying every item against a dead store.
type StoreError struct {
	Op          string
	Key         string
	Err         error
	Unavailable bool
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsStoreUnavailable reports whether err wraps a StoreError flagged as a
// connectivity-class failure.
func IsStoreUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Unavailable
}
