package memory

import (
	"context"
	"time"

	"brokerage/internal/domain/entity"
	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/repository"
	"brokerage/internal/errors"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
	undo  *undoLog
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return domainerrors.NewEmailAlreadyExistsError(user.Email)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.undo.user(r.store, user.ID)
	r.store.users[user.ID] = cloneUser(user)

	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(ctx, false, func(u *entity.User) bool { return u.ID == id })
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(ctx, false, func(u *entity.User) bool { return u.Email == email })
}

func (r *userRepository) FindByEmailWithSecret(ctx context.Context, email string) (*entity.User, error) {
	return r.find(ctx, true, func(u *entity.User) bool { return u.Email == email })
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	updated := cloneUser(stored)
	updated.LastLoginAt = &at
	r.undo.user(r.store, id)
	r.store.users[id] = updated

	return nil
}

// Update keeps the stored password hash, as the postgres repository does.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for id, existing := range r.store.users {
		if id != user.ID && existing.Email == user.Email {
			return domainerrors.NewEmailAlreadyExistsError(user.Email)
		}
	}
	updated := cloneUser(user)
	updated.PasswordHash = stored.PasswordHash
	updated.CreatedAt = stored.CreatedAt
	r.undo.user(r.store, user.ID)
	r.store.users[user.ID] = updated

	return nil
}

func (r *userRepository) find(ctx context.Context, withSecret bool, match func(*entity.User) bool) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if !match(u) {
			continue
		}
		found := cloneUser(u)
		if !withSecret {
			found.PasswordHash = ""
		}

		return found, nil
	}

	return nil, repository.ErrUserNotFound
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.EmployeeID != nil {
		id := *u.EmployeeID
		c.EmployeeID = &id
	}
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		c.LastLoginAt = &at
	}

	return &c
}
