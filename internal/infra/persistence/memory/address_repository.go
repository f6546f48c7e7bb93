package memory

import (
	"context"
	"time"

	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/repository"

	"github.com/google/uuid"
)

type addressRepository struct {
	store *Store
	undo  *undoLog
}

func NewAddressRepository(store *Store) repository.AddressRepository {
	return &addressRepository{store: store}
}

func (r *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	if address.CreatedAt.IsZero() {
		address.CreatedAt = time.Now().UTC()
	}
	c := *address
	r.undo.address(r.store, address.ID)
	r.store.addresses[address.ID] = &c

	return nil
}

func (r *addressRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored, ok := r.store.addresses[id]
	if !ok {
		return nil, repository.ErrAddressNotFound
	}
	c := *stored

	return &c, nil
}
