// Package audit provides the audit-trail contract and entity enrichment helpers.
package audit

import (
	"context"

	"showroom/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionConvert Action = "convert"
	ActionCancel  Action = "cancel"
	ActionExpire  Action = "expire"
	ActionNotify  Action = "notify"
)

// Recorder records state transitions for later inspection.
// The postgres implementation compresses large change payloads.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// NopRecorder discards all entries. Useful in tests.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, string, id.ID, Action, map[string]any) error {
	return nil
}

var _ Recorder = NopRecorder{}
