package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Helper: parse a path/body id into a uuid, mapping bad input to a domain error
func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Domain("invalid %s: %q is not a uuid", field, raw)
	}
	return id, nil
}

// Helper: parse a decimal amount that must be strictly positive
func parsePositiveAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperror.Domain("invalid %s: %q is not a decimal", field, raw)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, apperror.Domain("%s must be positive, got %s", field, amount.String())
	}
	return amount, nil
}

// Helper: parse an RFC3339 or date-only timestamp from request input
func parseTimestamp(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperror.Domain("invalid %s: %q is not an RFC3339 timestamp or YYYY-MM-DD date", field, raw)
	}
	return t, nil
}

// appendAudit writes one audit record inside the caller's transaction.
// details and snapshot are serialized to JSON; a nil snapshot stores empty.
func appendAudit(ctx context.Context, repo repository.AuditRepository, actor model.Actor, locationID, action, entityType, entityID, traceID string, details, snapshot interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to serialize audit details: %w", err)
	}

	snapshotJSON := ""
	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to serialize audit snapshot: %w", err)
		}
		snapshotJSON = string(raw)
	}

	record := &model.AuditRecord{
		ID:         uuid.New(),
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		LocationID: locationID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    string(detailsJSON),
		Snapshot:   snapshotJSON,
		TraceID:    traceID,
	}
	if err := repo.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// resolveLocationScope narrows a requested location filter to what the
// actor may see. Global actors pass the filter through (empty means all
// locations); scoped actors are pinned to their own location and any
// conflicting request is a scope violation.
func resolveLocationScope(actor model.Actor, requested string) (string, error) {
	if actor.Global {
		return requested, nil
	}
	if requested != "" && requested != actor.LocationID {
		return "", apperror.Scope("actor %s is scoped to location %s and cannot read location %s", actor.ID, actor.LocationID, requested).
			WithMeta("actor_location", actor.LocationID).
			WithMeta("requested_location", requested)
	}
	return actor.LocationID, nil
}

// transitionError builds the lifecycle error every invalid status change
// reports, naming the entity, the current status and the rejected target.
func transitionError(entityType, entityID, current, next string) error {
	return apperror.Lifecycle("%s %s cannot transition from %q to %q", entityType, entityID, current, next).
		WithMeta("entity_type", entityType).
		WithMeta("entity_id", entityID).
		WithMeta("current_status", current).
		WithMeta("attempted_status", next)
}
