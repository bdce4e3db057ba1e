package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"kasirku/internal/core/apperror"
	appctx "kasirku/internal/core/context"
	"kasirku/internal/core/idempotency"
	"kasirku/pkg/logger"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"
const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

const (
	ginIdempotencyKey   = "idempotency_key"
	ginIdempotencyStore = "idempotency_store"
)

// Idempotency middleware protects against duplicate requests.
// A resubmitted sale with the same key replays the first response.
// Must run after Auth: keys are scoped to the caller's store.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		if storeID := appctx.GetStoreID(ctx); storeID != "" {
			key = storeID + ":" + key
		}

		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, _ := io.ReadAll(limited)
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)

		replay, err := store.AcquireKey(ctx, idempotency.Request{
			Key:         key,
			UserID:      appctx.GetUserID(ctx),
			Operation:   c.Request.Method + " " + c.FullPath(),
			RequestHash: hex.EncodeToString(hash[:]),
		})
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
			} else {
				_ = c.Error(apperror.NewInternal(err).WithDetail("component", "idempotency"))
			}
			c.Abort()
			return
		}

		if replay != nil {
			replay = idempotency.NormalizeReplay(replay)
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(ginIdempotencyKey, key)
		c.Set(ginIdempotencyStore, store)

		c.Next()
	}
}

// CompleteIdempotency stores a successful response for replay (best-effort).
func CompleteIdempotency(c *gin.Context, statusCode int, contentType string, body []byte) {
	finishIdempotency(c, func(s idempotency.Store, key string) error {
		return s.CompleteKey(c.Request.Context(), key, statusCode, contentType, body)
	})
}

// FailIdempotency stores a client error response for replay (best-effort).
// Server errors release the key instead: the request may be retried with it.
func FailIdempotency(c *gin.Context, statusCode int, contentType string, body []byte) {
	finishIdempotency(c, func(s idempotency.Store, key string) error {
		if statusCode >= http.StatusInternalServerError {
			return s.ReleaseKey(c.Request.Context(), key)
		}
		return s.FailKey(c.Request.Context(), key, statusCode, contentType, body)
	})
}

func finishIdempotency(c *gin.Context, fn func(idempotency.Store, string) error) {
	key := c.GetString(ginIdempotencyKey)
	if key == "" {
		return
	}
	store, ok := c.Get(ginIdempotencyStore)
	if !ok {
		return
	}
	s, ok := store.(idempotency.Store)
	if !ok || s == nil {
		return
	}
	if err := fn(s, key); err != nil {
		logger.Warn(c.Request.Context(), "idempotency key not finished", "key", key, "error", err)
	}
	// One response per key.
	c.Set(ginIdempotencyKey, "")
}
