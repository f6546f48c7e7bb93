package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"brokerage/internal/domain/entity"
	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/repository"

	"github.com/google/uuid"
)

type propertyRepository struct {
	store *Store
	undo  *undoLog
}

func NewPropertyRepository(store *Store) repository.PropertyRepository {
	return &propertyRepository{store: store}
}

func (r *propertyRepository) Create(ctx context.Context, property *entity.Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, row := range r.store.properties {
		if row.property.PublicCode == property.PublicCode {
			return domainerrors.NewDuplicatePublicCodeError(property.PublicCode)
		}
	}
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	now := time.Now().UTC()
	property.CreatedAt, property.UpdatedAt = now, now

	r.store.seq++
	r.undo.property(r.store, property.ID)
	r.store.properties[property.ID] = &propertyRow{seq: r.store.seq, property: cloneProperty(property)}

	return nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.properties[id]
	if !ok {
		return nil, repository.ErrPropertyNotFound
	}

	return cloneProperty(row.property), nil
}

func (r *propertyRepository) FindByPublicCode(ctx context.Context, code string) (*entity.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, row := range r.store.properties {
		if row.property.PublicCode == code {
			return cloneProperty(row.property), nil
		}
	}

	return nil, repository.ErrPropertyNotFound
}

func (r *propertyRepository) FindAll(
	ctx context.Context,
	filter repository.PropertyFilter,
	page, pageSize int,
) ([]*entity.Property, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.store.mu.RLock()
	matches := make([]*propertyRow, 0, len(r.store.properties))
	for _, row := range r.store.properties {
		if matchesFilter(row.property, filter) {
			matches = append(matches, row)
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *propertyRow) int { return cmp.Compare(a.seq, b.seq) })

	total := int64(len(matches))
	page, pageSize = max(page, 1), max(pageSize, 0)
	start := len(matches)
	if pageSize > 0 && page-1 < len(matches)/pageSize+1 {
		start = min((page-1)*pageSize, len(matches))
	}
	end := min(start+pageSize, len(matches))

	items := make([]*entity.Property, 0, end-start)
	for _, row := range matches[start:end] {
		items = append(items, cloneProperty(row.property))
	}

	return items, total, nil
}

func (r *propertyRepository) Update(ctx context.Context, property *entity.Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.properties[property.ID]
	if !ok {
		return repository.ErrPropertyNotFound
	}
	for id, other := range r.store.properties {
		if id != property.ID && other.property.PublicCode == property.PublicCode {
			return domainerrors.NewDuplicatePublicCodeError(property.PublicCode)
		}
	}

	property.CreatedAt = row.property.CreatedAt
	property.UpdatedAt = time.Now().UTC()
	r.undo.property(r.store, property.ID)
	r.store.properties[property.ID] = &propertyRow{seq: row.seq, property: cloneProperty(property)}

	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.properties[id]; !ok {
		return repository.ErrPropertyNotFound
	}
	r.undo.property(r.store, id)
	delete(r.store.properties, id)

	return nil
}

func matchesFilter(p *entity.Property, f repository.PropertyFilter) bool {
	switch {
	case f.OperationType != nil && p.OperationType != *f.OperationType:
		return false
	case f.State != nil && p.State != *f.State:
		return false
	case f.MinPriceCents != nil && p.Price.Cents() < *f.MinPriceCents:
		return false
	case f.MaxPriceCents != nil && p.Price.Cents() > *f.MaxPriceCents:
		return false
	case f.MinSurface != nil && p.Surface < *f.MinSurface:
		return false
	case f.MaxSurface != nil && p.Surface > *f.MaxSurface:
		return false
	case f.OwnerCI != nil && p.OwnerCI.String() != *f.OwnerCI:
		return false
	case f.CaptorID != nil && p.CaptorID != *f.CaptorID:
		return false
	}

	return true
}

func cloneProperty(p *entity.Property) *entity.Property {
	c := *p
	if p.PlacerID != nil {
		id := *p.PlacerID
		c.PlacerID = &id
	}
	if p.PublishDate != nil {
		d := *p.PublishDate
		c.PublishDate = &d
	}
	if p.CloseDate != nil {
		d := *p.CloseDate
		c.CloseDate = &d
	}

	return &c
}
