package memory

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- Stock movements ---

type stockView struct{ s *Store }

func (s *Store) StockMovements() repository.StockMovementRepository {
	return stockView{s: s}
}

func (v stockView) Append(ctx context.Context, movement *model.StockMovement) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&movement.ID)
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = v.s.now()
	}
	v.s.stockMovements = append(v.s.stockMovements, *movement)
	return nil
}

func (v stockView) ListByLocationItem(ctx context.Context, locationID string, itemID uuid.UUID) ([]model.StockMovement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var movements []model.StockMovement
	for _, m := range v.s.stockMovements {
		if m.LocationID == locationID && m.ItemID == itemID {
			movements = append(movements, m)
		}
	}
	return movements, nil
}

func (v stockView) ListByLocation(ctx context.Context, locationID string) ([]model.StockMovement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var movements []model.StockMovement
	for _, m := range v.s.stockMovements {
		if m.LocationID == locationID {
			movements = append(movements, m)
		}
	}
	return movements, nil
}

func (v stockView) ListByDepartment(ctx context.Context, locationID, departmentID string) ([]model.StockMovement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var movements []model.StockMovement
	for _, m := range v.s.stockMovements {
		if m.LocationID == locationID && m.DepartmentID == departmentID {
			movements = append(movements, m)
		}
	}
	return movements, nil
}

func (v stockView) ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, m := range v.s.stockMovements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

// --- Items ---

type itemView struct{ s *Store }

func (s *Store) Items() repository.ItemRepository {
	return itemView{s: s}
}

func (v itemView) Create(ctx context.Context, item *model.Item) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&item.ID)
	item.CreatedAt = v.s.now()
	item.UpdatedAt = item.CreatedAt
	v.s.items[item.ID] = *item
	v.s.itemOrder = append(v.s.itemOrder, item.ID)
	return nil
}

func (v itemView) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	item, ok := v.s.items[id]
	if !ok {
		return nil, notFound
	}
	return &item, nil
}

func (v itemView) List(ctx context.Context, page, limit int) ([]model.Item, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	items := make([]model.Item, 0, len(v.s.itemOrder))
	for _, id := range v.s.itemOrder {
		items = append(items, v.s.items[id])
	}
	return paginate(items, page, limit), int64(len(items)), nil
}

// --- Users ---

type userView struct{ s *Store }

func (s *Store) Users() repository.UserRepository {
	return userView{s: s}
}

func (v userView) Create(ctx context.Context, user *model.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&user.ID)
	user.CreatedAt = v.s.now()
	user.UpdatedAt = user.CreatedAt
	v.s.users[user.ID] = *user
	return nil
}

func (v userView) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	user, ok := v.s.users[id]
	if !ok {
		return nil, notFound
	}
	return &user, nil
}

func (v userView) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, user := range v.s.users {
		if user.Username == username {
			out := user
			return &out, nil
		}
	}
	return nil, notFound
}
