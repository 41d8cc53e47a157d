package memory

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
)

type auditView struct{ s *Store }

// Audit returns the audit table view implementing repository.AuditRepository.
func (s *Store) Audit() repository.AuditRepository {
	return auditView{s: s}
}

func (v auditView) Append(ctx context.Context, record *model.AuditRecord) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	v.s.auditSeq++
	record.Seq = v.s.auditSeq
	ensureID(&record.ID)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = v.s.now()
	}
	v.s.auditRecords = append(v.s.auditRecords, *record)
	return nil
}

func (v auditView) MaxSeq(ctx context.Context) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.auditSeq, nil
}

func (v auditView) ListAfter(ctx context.Context, seq int64) ([]model.AuditRecord, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var records []model.AuditRecord
	for _, r := range v.s.auditRecords {
		if r.Seq > seq {
			records = append(records, r)
		}
	}
	return records, nil
}

func (v auditView) ListByTrace(ctx context.Context, traceID string) ([]model.AuditRecord, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var records []model.AuditRecord
	for _, r := range v.s.auditRecords {
		if r.TraceID == traceID {
			records = append(records, r)
		}
	}
	return records, nil
}

func (v auditView) List(ctx context.Context, filter repository.AuditListFilter) ([]model.AuditRecord, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []model.AuditRecord
	for _, r := range v.s.auditRecords {
		if filter.LocationID != "" && r.LocationID != filter.LocationID {
			continue
		}
		if filter.EntityType != "" && r.EntityType != filter.EntityType {
			continue
		}
		if filter.Action != "" && r.Action != filter.Action {
			continue
		}
		matched = append(matched, r)
	}

	total := int64(len(matched))
	return paginate(reversed(matched), filter.Page, filter.Limit), total, nil
}
