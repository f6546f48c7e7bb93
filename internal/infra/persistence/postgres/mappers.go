package postgres

import (
	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/valueobject"
	"brokerage/internal/errors"
	"brokerage/internal/infra/persistence/model"
)

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain drops the password hash unless withSecret is set.
func toUserDomain(data *model.UserModel, withSecret bool) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:          data.ID,
		EmployeeID:  data.EmployeeID,
		Email:       data.Email,
		Username:    data.Username,
		Role:        entity.Role(data.Role),
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		LastLoginAt: data.LastLoginAt,
	}
	if withSecret {
		user.PasswordHash = data.PasswordHash
	}

	return user
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:           data.ID,
		EmployeeID:   data.EmployeeID,
		Email:        data.Email,
		Username:     data.Username,
		Role:         data.Role.String(),
		PasswordHash: data.PasswordHash,
		IsActive:     data.IsActive,
		LastLoginAt:  data.LastLoginAt,
		CreatedAt:    data.CreatedAt,
	}
}

func toAddressDomain(data *model.AddressModel) (*entity.Address, error) {
	address := &entity.Address{
		ID:        data.ID,
		Street:    data.Street,
		City:      data.City,
		Zone:      data.Zone,
		CreatedAt: data.CreatedAt,
	}
	if data.Latitude != nil && data.Longitude != nil {
		coords, err := valueobject.NewCoordinates(*data.Latitude, *data.Longitude)
		if err != nil {
			return nil, errors.Wrapf(err, "stored address %s", data.ID)
		}
		address.Coordinates = &coords
	}

	return address, nil
}

func fromAddressDomain(data *entity.Address) *model.AddressModel {
	m := &model.AddressModel{
		ID:        data.ID,
		Street:    data.Street,
		City:      data.City,
		Zone:      data.Zone,
		CreatedAt: data.CreatedAt,
	}
	if data.Coordinates != nil {
		lat, lon := data.Coordinates.Latitude(), data.Coordinates.Longitude()
		m.Latitude, m.Longitude = &lat, &lon
	}

	return m
}

// toPropertyDomain rebuilds the value objects; a row that fails validation is
// reported rather than silently loaded.
func toPropertyDomain(data *model.PropertyModel) (*entity.Property, error) {
	price, err := valueobject.NewMoneyFromCents(data.PriceCents, data.Currency)
	if err != nil {
		return nil, errors.Wrapf(err, "stored property %s price", data.ID)
	}
	ownerCI, err := valueobject.NewCI(data.OwnerCI)
	if err != nil {
		return nil, errors.Wrapf(err, "stored property %s owner", data.ID)
	}
	capture, err := valueobject.NewPercentage(data.CaptureCommission)
	if err != nil {
		return nil, errors.Wrapf(err, "stored property %s capture commission", data.ID)
	}
	placement, err := valueobject.NewPercentage(data.PlacementCommission)
	if err != nil {
		return nil, errors.Wrapf(err, "stored property %s placement commission", data.ID)
	}

	return &entity.Property{
		ID:                  data.ID,
		AddressID:           data.AddressID,
		OwnerCI:             ownerCI,
		PublicCode:          data.PublicCode,
		Title:               data.Title,
		Description:         data.Description,
		Price:               price,
		Surface:             data.Surface,
		OperationType:       entity.OperationType(data.OperationType),
		State:               entity.PropertyState(data.State),
		CaptorID:            data.CaptorID,
		PlacerID:            data.PlacerID,
		CaptureDate:         data.CaptureDate,
		PublishDate:         data.PublishDate,
		CloseDate:           data.CloseDate,
		CaptureCommission:   capture,
		PlacementCommission: placement,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}, nil
}

func fromPropertyDomain(data *entity.Property) *model.PropertyModel {
	return &model.PropertyModel{
		ID:                  data.ID,
		AddressID:           data.AddressID,
		OwnerCI:             data.OwnerCI.String(),
		PublicCode:          data.PublicCode,
		Title:               data.Title,
		Description:         data.Description,
		PriceCents:          data.Price.Cents(),
		Currency:            string(data.Price.Currency()),
		Surface:             data.Surface,
		OperationType:       string(data.OperationType),
		State:               data.State.String(),
		CaptorID:            data.CaptorID,
		PlacerID:            data.PlacerID,
		CaptureDate:         data.CaptureDate,
		PublishDate:         data.PublishDate,
		CloseDate:           data.CloseDate,
		CaptureCommission:   data.CaptureCommission.Value(),
		PlacementCommission: data.PlacementCommission.Value(),
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}
