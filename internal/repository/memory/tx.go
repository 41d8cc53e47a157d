package memory

import (
	"context"

	"backend/internal/repository"
)

type txManager struct{}

// TxManager returns a pass-through transaction manager. The store's single
// mutex already serializes writers, matching the engine's single-writer
// model; a real backend swaps in the GORM transaction manager instead.
func (s *Store) TxManager() repository.TransactionManager {
	return txManager{}
}

func (txManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
