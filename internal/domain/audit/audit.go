// Package audit records who changed what. Storage lives in infrastructure.
package audit

import (
	"context"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/pkg/logger"
)

// Action is the kind of audited change.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionStatus Action = "status"
	ActionPost   Action = "post"
)

// Recorder persists an audit row with the entity state after the change.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, snapshot any) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, string, id.ID, Action, any) error { return nil }

// Safe records an entry and only logs a failure; the audited change is already committed.
func Safe(ctx context.Context, rec Recorder, entityType string, entityID id.ID, action Action, snapshot any) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, entityType, entityID, action, snapshot); err != nil {
		logger.Warn(ctx, "audit record failed",
			"entity", entityType,
			"id", entityID.String(),
			"action", string(action),
			"error", err,
		)
	}
}

// Attach wires after-create/update/delete hooks of a catalog service to rec.
func Attach[T domain.Entity](hooks *domain.HookRegistry[T], rec Recorder, entityType string) {
	on := func(action Action) domain.Hook[T] {
		return func(ctx context.Context, e T) error {
			return rec.Record(ctx, entityType, e.GetID(), action, e)
		}
	}
	hooks.OnAfterCreate(on(ActionCreate))
	hooks.OnAfterUpdate(on(ActionUpdate))
	hooks.OnAfterDelete(on(ActionDelete))
}
