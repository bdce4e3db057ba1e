package memory

import (
	"context"
	"sync"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/idempotency"
)

type idempotencyRecord struct {
	req       idempotency.Request
	status    idempotency.Status
	replay    idempotency.Replay
	updatedAt time.Time
	expiresAt time.Time
}

// IdempotencyStore implements idempotency.Store in memory. Keys live outside
// the transactional tables, so a rolled-back sale does not roll back its key.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]*idempotencyRecord
	ttl  time.Duration
	now  func() time.Time
}

// NewIdempotencyStore creates a key store with the given replay TTL.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}
	return &IdempotencyStore{
		keys: make(map[string]*idempotencyRecord),
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// AcquireKey implements idempotency.Store.
func (s *IdempotencyStore) AcquireKey(_ context.Context, req idempotency.Request) (*idempotency.Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.keys[req.Key]
	if !ok || now.After(rec.expiresAt) {
		s.keys[req.Key] = &idempotencyRecord{
			req:       req,
			status:    idempotency.StatusPending,
			updatedAt: now,
			expiresAt: now.Add(s.ttl),
		}
		return nil, nil
	}

	if rec.req != req {
		return nil, apperror.NewIdempotencyMismatch(req.Key)
	}

	switch rec.status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		replay := rec.replay
		return idempotency.NormalizeReplay(&replay), nil
	default:
		if now.Sub(rec.updatedAt) <= idempotency.StaleAfter {
			return nil, apperror.NewIdempotencyConflict(req.Key)
		}
		rec.updatedAt = now
		return nil, nil
	}
}

// CompleteKey implements idempotency.Store.
func (s *IdempotencyStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, body []byte) error {
	s.finish(key, idempotency.StatusSuccess, statusCode, contentType, body)
	return nil
}

// FailKey implements idempotency.Store.
func (s *IdempotencyStore) FailKey(_ context.Context, key string, statusCode int, contentType string, body []byte) error {
	s.finish(key, idempotency.StatusFailed, statusCode, contentType, body)
	return nil
}

// ReleaseKey implements idempotency.Store. Finished keys are kept.
func (s *IdempotencyStore) ReleaseKey(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.keys[key]; ok && rec.status == idempotency.StatusPending {
		delete(s.keys, key)
	}
	return nil
}

func (s *IdempotencyStore) finish(key string, status idempotency.Status, statusCode int, contentType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.keys[key]
	if !ok {
		return
	}
	rec.status = status
	rec.replay = idempotency.Replay{
		StatusCode:  statusCode,
		ContentType: contentType,
		Body:        append([]byte(nil), body...),
	}
	rec.updatedAt = s.now()
}
