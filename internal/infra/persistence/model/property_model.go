package model

import (
	"time"

	"github.com/google/uuid"
)

// PropertyModel mirrors the 'propiedades' table. Money is stored as integer
// cents plus an ISO currency code; commission percentages as decimals.
type PropertyModel struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AddressID           uuid.UUID     `gorm:"type:uuid;not null;index"`
	Address             *AddressModel `gorm:"foreignKey:AddressID"`
	OwnerCI             string        `gorm:"column:owner_ci;type:varchar(20);not null;index"`
	PublicCode          string        `gorm:"type:varchar(50);uniqueIndex;not null"`
	Title               string        `gorm:"type:varchar(200);not null"`
	Description         string        `gorm:"type:text"`
	PriceCents          int64         `gorm:"not null;index"`
	Currency            string        `gorm:"type:char(3);not null;default:'BOB'"`
	Surface             float64       `gorm:"type:decimal(12,2);not null;check:surface > 0"`
	OperationType       string        `gorm:"type:varchar(20);not null;index"`
	State               string        `gorm:"type:varchar(20);not null;index"`
	CaptorID            uuid.UUID     `gorm:"type:uuid;not null;index"`
	PlacerID            *uuid.UUID    `gorm:"type:uuid"`
	CaptureDate         time.Time     `gorm:"type:date;not null"`
	PublishDate         *time.Time    `gorm:"type:date"`
	CloseDate           *time.Time    `gorm:"type:date"`
	CaptureCommission   float64       `gorm:"type:decimal(5,2);not null;default:0"`
	PlacementCommission float64       `gorm:"type:decimal(5,2);not null;default:0"`
	CreatedAt           time.Time     `gorm:"index"`
	UpdatedAt           time.Time
}

// TableName explicitly sets the table name for GORM.
func (PropertyModel) TableName() string {
	return "propiedades"
}
