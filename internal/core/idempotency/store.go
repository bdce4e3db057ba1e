// Package idempotency defines the key store behind the X-Idempotency-Key header.
package idempotency

import (
	"context"
	"time"
)

// Status of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// DefaultTTL is how long a completed key replays its response.
const DefaultTTL = 24 * time.Hour

// StaleAfter is how long a pending key may stay pending before another
// request may reclaim it (the first request most likely crashed).
const StaleAfter = time.Minute

// Replay is a stored HTTP response returned for a repeated request.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Request identifies the call that owns a key. A key reused with a different
// user, operation or body is rejected.
type Request struct {
	Key         string
	UserID      string
	Operation   string
	RequestHash string
}

// Store persists idempotency keys.
type Store interface {
	// AcquireKey returns (nil, nil) when the caller now owns the key, a Replay when
	// the operation already finished, or an apperror conflict when the key is
	// in flight or mismatched.
	AcquireKey(ctx context.Context, req Request) (*Replay, error)
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error
	// ReleaseKey forgets a pending key so the same request can be retried.
	ReleaseKey(ctx context.Context, key string) error
}

// NormalizeReplay fills defaults for records stored without status or content type.
func NormalizeReplay(r *Replay) *Replay {
	if r.StatusCode == 0 {
		r.StatusCode = 200
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	return r
}
