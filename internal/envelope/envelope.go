// Package envelope wraps every state-changing operation in the engine.
// It is the single place that proves "every mutation is audited": a body
// that completes without writing an audit record tied to its reference
// chain id is treated as an engine bug.
package envelope

import (
	"context"
	"encoding/json"
	"time"

	"backend/internal/model"
	"backend/internal/ratelimit"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditReader is the slice of the audit store the envelope verifies
// against. The store's monotonic sequence tells the envelope exactly which
// rows the current call wrote.
type AuditReader interface {
	MaxSeq(ctx context.Context) (int64, error)
	ListAfter(ctx context.Context, seq int64) ([]model.AuditRecord, error)
}

// Publisher receives committed-mutation events, typically a websocket hub.
type Publisher interface {
	Publish(payload []byte)
}

// Meta identifies the mutation being guarded.
type Meta struct {
	Actor      model.Actor
	Action     string
	EntityType string
	LocationID string
}

// Class is the throttle key component for this mutation.
func (m Meta) Class() string {
	return m.EntityType + ":" + m.Action
}

// Trace is the mutable carrier the mutation body must populate with the
// reference chain id it stamped on its audit records.
type Trace struct {
	ReferenceChainID string
}

// Envelope guards mutations with operational logging, per-actor throttling
// of sensitive classes, and post-execution audit-invariant verification.
type Envelope struct {
	audit     AuditReader
	limiter   *ratelimit.Limiter
	log       *logrus.Logger
	throttled map[string]struct{}
	publisher Publisher
	now       func() time.Time
}

// New builds an envelope. throttledClasses lists "ENTITY:ACTION" pairs the
// limiter applies to; publisher may be nil.
func New(audit AuditReader, limiter *ratelimit.Limiter, log *logrus.Logger, throttledClasses []string, publisher Publisher) *Envelope {
	throttled := make(map[string]struct{}, len(throttledClasses))
	for _, class := range throttledClasses {
		throttled[class] = struct{}{}
	}
	return &Envelope{
		audit:     audit,
		limiter:   limiter,
		log:       log,
		throttled: throttled,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run executes a mutation body under the envelope's guarantees. The body
// receives a Trace it must populate with the chain id shared by the audit
// records it writes. Operational log lines carry elapsed time and the
// mapped error code but never monetary amounts or before/after state.
func Run[T any](e *Envelope, ctx context.Context, meta Meta, body func(ctx context.Context, trace *Trace) (T, error)) (T, error) {
	var zero T

	started := e.now()
	provisionalID := uuid.NewString()
	trace := &Trace{}

	fields := logrus.Fields{
		"actor_id":    meta.Actor.ID,
		"actor_role":  string(meta.Actor.Role),
		"location_id": meta.LocationID,
		"entity_type": meta.EntityType,
		"action":      meta.Action,
		"trace_id":    provisionalID,
	}
	e.log.WithFields(fields).Info("mutation start")

	fail := func(err error) (T, error) {
		traceID := trace.ReferenceChainID
		if traceID == "" {
			traceID = provisionalID
		}
		e.log.WithFields(logrus.Fields{
			"actor_id":    meta.Actor.ID,
			"entity_type": meta.EntityType,
			"action":      meta.Action,
			"trace_id":    traceID,
			"elapsed_ms":  e.now().Sub(started).Milliseconds(),
			"error_kind":  apperror.Code(err),
		}).Error("mutation failure")
		return zero, err
	}

	beforeSeq, err := e.audit.MaxSeq(ctx)
	if err != nil {
		return fail(err)
	}

	if _, ok := e.throttled[meta.Class()]; ok {
		if err := e.limiter.Consume(meta.Actor.ID, meta.LocationID, meta.Class()); err != nil {
			return fail(err)
		}
	}

	result, err := body(ctx, trace)
	if err != nil {
		return fail(err)
	}

	if trace.ReferenceChainID == "" {
		return fail(apperror.Invariant("mutation completed without referenceChainId").
			WithMeta("action", meta.Action).
			WithMeta("entity_type", meta.EntityType))
	}

	written, err := e.audit.ListAfter(ctx, beforeSeq)
	if err != nil {
		return fail(err)
	}
	if len(written) == 0 {
		return fail(apperror.Invariant("mutation completed without audit write").
			WithMeta("action", meta.Action).
			WithMeta("entity_type", meta.EntityType))
	}

	matched := false
	for _, record := range written {
		if record.TraceID == trace.ReferenceChainID {
			matched = true
			break
		}
	}
	if !matched {
		return fail(apperror.Invariant("audit write for referenceChainId missing").
			WithMeta("trace_id", trace.ReferenceChainID))
	}

	e.log.WithFields(logrus.Fields{
		"actor_id":    meta.Actor.ID,
		"entity_type": meta.EntityType,
		"action":      meta.Action,
		"trace_id":    trace.ReferenceChainID,
		"audit_rows":  len(written),
		"elapsed_ms":  e.now().Sub(started).Milliseconds(),
	}).Info("mutation success")

	if e.publisher != nil {
		event, marshalErr := json.Marshal(map[string]string{
			"event":       "mutation_committed",
			"action":      meta.Action,
			"entity_type": meta.EntityType,
			"trace_id":    trace.ReferenceChainID,
		})
		if marshalErr == nil {
			e.publisher.Publish(event)
		}
	}

	return result, nil
}
