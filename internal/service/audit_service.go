package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/guard"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
)

// --- DTOs ---

type AuditQuery struct {
	LocationID string `form:"location_id"`
	EntityType string `form:"entity_type"`
	Action     string `form:"action"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type AuditRecordResponse struct {
	Seq        int64  `json:"seq"`
	ID         string `json:"id"`
	ActorID    string `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	LocationID string `json:"location_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Details    string `json:"details"`
	Snapshot   string `json:"snapshot,omitempty"`
	TraceID    string `json:"trace_id"`
	CreatedAt  string `json:"created_at"`
}

type TraceChainResponse struct {
	TraceID string                `json:"trace_id"`
	Records []AuditRecordResponse `json:"records"`
}

// --- Interface ---

// AuditService reads the audit trail, scope-filtered to what the actor
// may see. Records are never written here; every mutation path writes its
// own rows.
type AuditService interface {
	ListAuditRecords(ctx context.Context, actor model.Actor, query AuditQuery) ([]AuditRecordResponse, int64, error)
	GetTraceChain(ctx context.Context, actor model.Actor, traceID string) (*TraceChainResponse, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService returns a new instance of AuditService
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// --- Implementation ---

func (s *auditService) ListAuditRecords(ctx context.Context, actor model.Actor, query AuditQuery) ([]AuditRecordResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	scoped, err := resolveLocationScope(actor, query.LocationID)
	if err != nil {
		return nil, 0, err
	}
	records, total, err := s.auditRepo.List(ctx, repository.AuditListFilter{
		LocationID: scoped,
		EntityType: query.EntityType,
		Action:     query.Action,
		Page:       query.Page,
		Limit:      query.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit records: %w", err)
	}

	responses := make([]AuditRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapAuditRecordResponse(record))
	}
	return responses, total, nil
}

// GetTraceChain returns every record sharing a reference chain id in write
// order. A scoped actor may only read a chain that stayed inside their
// location; a chain that crosses locations is withheld entirely rather
// than truncated, since a partial chain would misrepresent what happened.
func (s *auditService) GetTraceChain(ctx context.Context, actor model.Actor, traceID string) (*TraceChainResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	records, err := s.auditRepo.ListByTrace(ctx, traceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trace chain: %w", err)
	}
	if len(records) == 0 {
		return nil, apperror.Domain("no audit records for trace %s", traceID)
	}

	if !actor.Global {
		for _, record := range records {
			if record.LocationID != actor.LocationID {
				return nil, apperror.Scope("trace %s includes location %s outside actor scope %s", traceID, record.LocationID, actor.LocationID).
					WithMeta("trace_id", traceID)
			}
		}
	}

	responses := make([]AuditRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapAuditRecordResponse(record))
	}
	return &TraceChainResponse{TraceID: traceID, Records: responses}, nil
}

// --- Mapping ---

func mapAuditRecordResponse(r model.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		Seq:        r.Seq,
		ID:         r.ID.String(),
		ActorID:    r.ActorID,
		ActorRole:  r.ActorRole,
		LocationID: r.LocationID,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Details:    r.Details,
		Snapshot:   r.Snapshot,
		TraceID:    r.TraceID,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}
