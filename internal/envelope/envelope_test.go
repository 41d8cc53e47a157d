package envelope

import (
	"context"
	"io"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/ratelimit"
	"backend/internal/repository/memory"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testMeta() Meta {
	return Meta{
		Actor:      model.Actor{ID: "fin-1", Role: model.RoleFinanceOfficer, LocationID: "LOC-A"},
		Action:     model.ActionCreateExpense,
		EntityType: model.EntityExpense,
		LocationID: "LOC-A",
	}
}

func appendTestRecord(t *testing.T, store *memory.Store, traceID string) {
	t.Helper()
	err := store.Audit().Append(context.Background(), &model.AuditRecord{
		ActorID:    "fin-1",
		ActorRole:  string(model.RoleFinanceOfficer),
		LocationID: "LOC-A",
		Action:     model.ActionCreateExpense,
		EntityType: model.EntityExpense,
		EntityID:   uuid.NewString(),
		Details:    "{}",
		TraceID:    traceID,
	})
	require.NoError(t, err)
}

func TestRun_SuccessWithAuditWrite(t *testing.T) {
	store := memory.NewStore()
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, nil)

	result, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		trace.ReferenceChainID = uuid.NewString()
		appendTestRecord(t, store, trace.ReferenceChainID)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestRun_BodyErrorPropagates(t *testing.T) {
	store := memory.NewStore()
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, nil)

	_, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		return "", apperror.Domain("expense category is required")
	})
	require.Error(t, err)
	assert.Equal(t, "DOMAIN", apperror.Code(err))
}

func TestRun_MissingReferenceChainID(t *testing.T) {
	store := memory.NewStore()
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, nil)

	_, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		appendTestRecord(t, store, uuid.NewString())
		return "ok", nil
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvariant))
	assert.Contains(t, err.Error(), "referenceChainId")
}

func TestRun_MissingAuditWrite(t *testing.T) {
	store := memory.NewStore()
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, nil)

	_, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		trace.ReferenceChainID = uuid.NewString()
		return "ok", nil
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvariant))
	assert.Contains(t, err.Error(), "audit write")
}

func TestRun_AuditWriteUnderWrongTrace(t *testing.T) {
	store := memory.NewStore()
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, nil)

	_, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		trace.ReferenceChainID = uuid.NewString()
		appendTestRecord(t, store, uuid.NewString())
		return "ok", nil
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvariant))
}

func TestRun_PreexistingRecordsDoNotSatisfyVerification(t *testing.T) {
	store := memory.NewStore()
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, nil)

	appendTestRecord(t, store, uuid.NewString())

	_, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		trace.ReferenceChainID = uuid.NewString()
		return "ok", nil
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvariant))
}

func TestRun_ThrottledClass(t *testing.T) {
	store := memory.NewStore()
	meta := testMeta()
	limiter := ratelimit.New(1, time.Minute)
	env := New(store.Audit(), limiter, testLogger(), []string{meta.Class()}, nil)

	body := func(ctx context.Context, trace *Trace) (string, error) {
		trace.ReferenceChainID = uuid.NewString()
		appendTestRecord(t, store, trace.ReferenceChainID)
		return "ok", nil
	}

	_, err := Run(env, context.Background(), meta, body)
	require.NoError(t, err)

	_, err = Run(env, context.Background(), meta, body)
	require.Error(t, err)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", apperror.Code(err))
}

func TestRun_UnthrottledClassIgnoresLimiter(t *testing.T) {
	store := memory.NewStore()
	limiter := ratelimit.New(1, time.Minute)
	env := New(store.Audit(), limiter, testLogger(), []string{"VENDOR_INVOICE:APPROVE_INVOICE"}, nil)

	body := func(ctx context.Context, trace *Trace) (string, error) {
		trace.ReferenceChainID = uuid.NewString()
		appendTestRecord(t, store, trace.ReferenceChainID)
		return "ok", nil
	}

	for i := 0; i < 3; i++ {
		_, err := Run(env, context.Background(), testMeta(), body)
		require.NoError(t, err)
	}
}

type capturePublisher struct {
	payloads [][]byte
}

func (p *capturePublisher) Publish(payload []byte) {
	p.payloads = append(p.payloads, payload)
}

func TestRun_PublishesCommittedEvent(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturePublisher{}
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, publisher)

	_, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		trace.ReferenceChainID = uuid.NewString()
		appendTestRecord(t, store, trace.ReferenceChainID)
		return "ok", nil
	})
	require.NoError(t, err)
	require.Len(t, publisher.payloads, 1)
	assert.Contains(t, string(publisher.payloads[0]), "mutation_committed")
}

func TestRun_NoEventOnFailure(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturePublisher{}
	env := New(store.Audit(), ratelimit.NewDefault(), testLogger(), nil, publisher)

	_, err := Run(env, context.Background(), testMeta(), func(ctx context.Context, trace *Trace) (string, error) {
		return "", apperror.Domain("boom")
	})
	require.Error(t, err)
	assert.Empty(t, publisher.payloads)
}
