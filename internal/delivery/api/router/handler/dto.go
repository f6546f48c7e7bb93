package handler

import (
	"time"

	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/valueobject"
	"brokerage/internal/usecase"

	"github.com/google/uuid"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	EmployeeID  *uuid.UUID `json:"employee_id,omitempty"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func newUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		EmployeeID:  u.EmployeeID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role.String(),
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// TokenResponse carries a token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenResponse(p usecase.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
	}
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	User UserResponse `json:"user"`
	TokenResponse
}

// MoneyResponse renders Money as a decimal amount plus currency.
type MoneyResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func newMoneyResponse(m valueobject.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount(), Currency: string(m.Currency())}
}

// PropertyResponse is the public view of a listing.
type PropertyResponse struct {
	ID                  uuid.UUID     `json:"id"`
	AddressID           uuid.UUID     `json:"address_id"`
	OwnerCI             string        `json:"owner_ci"`
	PublicCode          string        `json:"public_code"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	Price               MoneyResponse `json:"price"`
	Surface             float64       `json:"surface"`
	OperationType       string        `json:"operation_type"`
	State               string        `json:"state"`
	CaptorID            uuid.UUID     `json:"captor_id"`
	PlacerID            *uuid.UUID    `json:"placer_id,omitempty"`
	CaptureDate         time.Time     `json:"capture_date"`
	PublishDate         *time.Time    `json:"publish_date,omitempty"`
	CloseDate           *time.Time    `json:"close_date,omitempty"`
	CaptureCommission   float64       `json:"capture_commission"`
	PlacementCommission float64       `json:"placement_commission"`
	IsPublished         bool          `json:"is_published"`
	DaysOnMarket        int           `json:"days_on_market"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func newPropertyResponse(p *entity.Property, today time.Time) PropertyResponse {
	return PropertyResponse{
		ID:                  p.ID,
		AddressID:           p.AddressID,
		OwnerCI:             p.OwnerCI.String(),
		PublicCode:          p.PublicCode,
		Title:               p.Title,
		Description:         p.Description,
		Price:               newMoneyResponse(p.Price),
		Surface:             p.Surface,
		OperationType:       string(p.OperationType),
		State:               p.State.String(),
		CaptorID:            p.CaptorID,
		PlacerID:            p.PlacerID,
		CaptureDate:         p.CaptureDate,
		PublishDate:         p.PublishDate,
		CloseDate:           p.CloseDate,
		CaptureCommission:   p.CaptureCommission.Value(),
		PlacementCommission: p.PlacementCommission.Value(),
		IsPublished:         p.IsPublished(),
		DaysOnMarket:        p.DaysOnMarket(today),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// PropertyPageResponse is one page of a property listing.
type PropertyPageResponse struct {
	Items      []PropertyResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// CommissionResponse breaks a commission down by agent.
type CommissionResponse struct {
	Base      MoneyResponse `json:"base"`
	Capture   MoneyResponse `json:"capture"`
	Placement MoneyResponse `json:"placement"`
	Total     MoneyResponse `json:"total"`
}
