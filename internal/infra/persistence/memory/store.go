// Package memory is an in-process implementation of the domain repositories,
// selected with storage.driver=memory and used as the storage fake in tests.
package memory

import (
	"context"
	"sync"

	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// Module wires the store and every memory-backed repository.
var Module = fx.Options(
	fx.Provide(
		NewStore,
		NewTransactionManager,
		NewUserRepository,
		NewPropertyRepository,
		NewAddressRepository,
	),
)

// Store holds every table behind one lock. Entities are copied on the way in
// and out so callers never share memory with the store.
type Store struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	seq        int64
	users      map[uuid.UUID]*entity.User
	addresses  map[uuid.UUID]*entity.Address
	properties map[uuid.UUID]*propertyRow
}

type propertyRow struct {
	seq      int64
	property *entity.Property
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*entity.User),
		addresses:  make(map[uuid.UUID]*entity.Address),
		properties: make(map[uuid.UUID]*propertyRow),
	}
}

// undoLog keeps the pre-transaction row of every key a transaction writes, so
// a rollback only touches those keys. A nil entry means the row did not exist.
// Methods are called with Store.mu held; a nil log records nothing.
type undoLog struct {
	users      map[uuid.UUID]*entity.User
	addresses  map[uuid.UUID]*entity.Address
	properties map[uuid.UUID]*propertyRow
}

func newUndoLog() *undoLog {
	return &undoLog{
		users:      make(map[uuid.UUID]*entity.User),
		addresses:  make(map[uuid.UUID]*entity.Address),
		properties: make(map[uuid.UUID]*propertyRow),
	}
}

func (l *undoLog) user(s *Store, id uuid.UUID) {
	if l == nil {
		return
	}
	if _, seen := l.users[id]; !seen {
		l.users[id] = s.users[id]
	}
}

func (l *undoLog) address(s *Store, id uuid.UUID) {
	if l == nil {
		return
	}
	if _, seen := l.addresses[id]; !seen {
		l.addresses[id] = s.addresses[id]
	}
}

func (l *undoLog) property(s *Store, id uuid.UUID) {
	if l == nil {
		return
	}
	if _, seen := l.properties[id]; !seen {
		l.properties[id] = s.properties[id]
	}
}

func (l *undoLog) rollback(s *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, prev := range l.users {
		if prev == nil {
			delete(s.users, id)
		} else {
			s.users[id] = prev
		}
	}
	for id, prev := range l.addresses {
		if prev == nil {
			delete(s.addresses, id)
		} else {
			s.addresses[id] = prev
		}
	}
	for id, prev := range l.properties {
		if prev == nil {
			delete(s.properties, id)
		} else {
			s.properties[id] = prev
		}
	}
}

// transactionManager serializes transactions and undoes the rows written by
// fn when it fails. Writes made outside the transaction are left alone.
// Stored entities are replaced, never mutated, so keeping the old pointer is
// enough to restore a row.
type transactionManager struct {
	store *Store
}

func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

func (tm *transactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) (err error) {
	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	undo := newUndoLog()
	defer func() {
		if r := recover(); r != nil {
			undo.rollback(tm.store)
			panic(r)
		}
		if err != nil {
			undo.rollback(tm.store)
		}
	}()

	return fn(factory{store: tm.store, undo: undo})
}

type factory struct {
	store *Store
	undo  *undoLog
}

func (f factory) NewUserRepository() repository.UserRepository {
	return &userRepository{store: f.store, undo: f.undo}
}

func (f factory) NewPropertyRepository() repository.PropertyRepository {
	return &propertyRepository{store: f.store, undo: f.undo}
}

func (f factory) NewAddressRepository() repository.AddressRepository {
	return &addressRepository{store: f.store, undo: f.undo}
}
