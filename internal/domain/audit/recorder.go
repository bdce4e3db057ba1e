// Package audit defines the audit trail written alongside ledger operations.
package audit

import (
	"context"

	"kasirku/internal/core/id"
)

// Action is the kind of audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionSale     Action = "sale"
	ActionReceive  Action = "receive"
	ActionTransfer Action = "transfer"
)

// Entry is one audit record. Changes is marshalled to JSON by the recorder.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Changes    map[string]any
}

// Recorder writes audit entries. Implementations must write through the
// transaction carried by ctx so the entry commits or rolls back with the operation.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop discards every entry.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) error { return nil }
