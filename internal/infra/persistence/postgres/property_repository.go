package postgres

import (
	"context"
	"time"

	"brokerage/internal/domain/entity"
	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/repository"
	"brokerage/internal/errors"
	"brokerage/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// propertyRepository implements the domain.PropertyRepository interface.
type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository is the constructor for propertyRepository.
func NewPropertyRepository(db *gorm.DB) repository.PropertyRepository {
	return &propertyRepository{db: db}
}

func (repo *propertyRepository) Create(ctx context.Context, property *entity.Property) error {
	propertyM := fromPropertyDomain(property)

	if err := repo.db.WithContext(ctx).Omit("Address").Create(propertyM).Error; err != nil {
		switch {
		case isUniqueConstraintViolation(err):
			return domainerrors.NewDuplicatePublicCodeError(property.PublicCode)
		case isCheckConstraintViolation(err):
			return domainerrors.NewBusinessRuleViolationError("La superficie debe ser mayor a 0")
		case isForeignKeyConstraintViolation(err):
			return domainerrors.NewInvalidValueError("DireccionID", property.AddressID, "Direccion inexistente")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create property")
	}

	property.ID = propertyM.ID
	property.CreatedAt = propertyM.CreatedAt
	property.UpdatedAt = propertyM.UpdatedAt

	return nil
}

func (repo *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	return repo.findOne(repo.db.WithContext(ctx).Where("id = ?", id), "failed to find property by id")
}

func (repo *propertyRepository) FindByPublicCode(ctx context.Context, code string) (*entity.Property, error) {
	return repo.findOne(repo.db.WithContext(ctx).Where("public_code = ?", code), "failed to find property by code")
}

func (repo *propertyRepository) FindAll(
	ctx context.Context,
	filter repository.PropertyFilter,
	page, pageSize int,
) ([]*entity.Property, int64, error) {
	tx := applyPropertyFilter(repo.db.WithContext(ctx).Model(&model.PropertyModel{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count properties")
	}
	if total == 0 {
		return []*entity.Property{}, 0, nil
	}

	var rows []*model.PropertyModel
	err := tx.Order("created_at").Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list properties")
	}

	properties := make([]*entity.Property, 0, len(rows))
	for _, row := range rows {
		property, err := toPropertyDomain(row)
		if err != nil {
			return nil, 0, err
		}
		properties = append(properties, property)
	}

	return properties, total, nil
}

// Update writes every column, zero values included.
func (repo *propertyRepository) Update(ctx context.Context, property *entity.Property) error {
	propertyM := fromPropertyDomain(property)
	propertyM.UpdatedAt = time.Now().UTC()

	result := repo.db.WithContext(ctx).
		Model(&model.PropertyModel{}).
		Where("id = ?", property.ID).
		Select("*").
		Omit("id", "created_at", "Address").
		Updates(propertyM)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.NewDuplicatePublicCodeError(property.PublicCode)
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update property")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPropertyNotFound
	}
	property.UpdatedAt = propertyM.UpdatedAt

	return nil
}

func (repo *propertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PropertyModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete property")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPropertyNotFound
	}

	return nil
}

func (repo *propertyRepository) findOne(tx *gorm.DB, op string) (*entity.Property, error) {
	var propertyM model.PropertyModel
	if err := tx.First(&propertyM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPropertyNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, op)
	}

	return toPropertyDomain(&propertyM)
}

func applyPropertyFilter(tx *gorm.DB, f repository.PropertyFilter) *gorm.DB {
	if f.OperationType != nil {
		tx = tx.Where("operation_type = ?", string(*f.OperationType))
	}
	if f.State != nil {
		tx = tx.Where("state = ?", f.State.String())
	}
	if f.MinPriceCents != nil {
		tx = tx.Where("price_cents >= ?", *f.MinPriceCents)
	}
	if f.MaxPriceCents != nil {
		tx = tx.Where("price_cents <= ?", *f.MaxPriceCents)
	}
	if f.MinSurface != nil {
		tx = tx.Where("surface >= ?", *f.MinSurface)
	}
	if f.MaxSurface != nil {
		tx = tx.Where("surface <= ?", *f.MaxSurface)
	}
	if f.OwnerCI != nil {
		tx = tx.Where("owner_ci = ?", *f.OwnerCI)
	}
	if f.CaptorID != nil {
		tx = tx.Where("captor_id = ?", *f.CaptorID)
	}

	return tx
}
