// Package numerator provides gap-free human-readable numbering (receipts, documents)
// backed by the sys_sequences table. Each number is taken with one
// INSERT ... ON CONFLICT ... RETURNING; run inside the business transaction,
// a rollback releases the number.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call, typically the transaction
// carried by ctx or the pool outside of one.
type QuerierFunc func(ctx context.Context) Querier

// Service provides numbering functionality.
type Service struct {
	querier QuerierFunc
}

// NewWithQuerier creates a numerator service that resolves its querier per call,
// so strict numbers are taken inside the caller's transaction.
func NewWithQuerier(fn QuerierFunc) *Service {
	return &Service{querier: fn}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "TRX", "GR")
	Prefix string

	// Scope separates independent sequences sharing a prefix (e.g., a store ID).
	// It is part of the sequence key but never of the formatted number.
	Scope string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// GetNextNumber issues the next number of the sequence selected by cfg and period.
// Pattern: PREFIX-YEAR-XXXXX (e.g., TRX-2026-00001)
func (s *Service) GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	num, err := s.getNextStrict(ctx, BuildKey(cfg, period))
	if err != nil {
		return "", err
	}
	return Format(cfg, period, num), nil
}

// getNextStrict fetches the next number directly from DB using UPSERT + RETURNING.
func (s *Service) getNextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}

// BuildKey creates the sequence key based on config and period.
func BuildKey(cfg Config, period time.Time) string {
	base := cfg.Prefix
	if cfg.Scope != "" {
		base = fmt.Sprintf("%s_%s", cfg.Prefix, cfg.Scope)
	}
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", base, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", base, period.Format("2006"))
	default:
		return base
	}
}

// Format creates the final number string.
func Format(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}
