package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"brokerage/internal/delivery/api/middleware"
	"brokerage/internal/delivery/api/response"
	"brokerage/internal/domain/entity"
	"brokerage/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// PropertyHandlerParams holds dependencies for PropertyHandler, injected by Fx.
type PropertyHandlerParams struct {
	fx.In

	PropertyUC usecase.PropertyUsecase
	Logger     *slog.Logger
}

// PropertyHandler serves the property endpoints.
type PropertyHandler struct {
	propertyUC usecase.PropertyUsecase
	logger     *slog.Logger
	now        func() time.Time
}

// NewPropertyHandler is the constructor for PropertyHandler
func NewPropertyHandler(params PropertyHandlerParams) *PropertyHandler {
	return &PropertyHandler{
		propertyUC: params.PropertyUC,
		logger:     params.Logger,
		now:        time.Now,
	}
}

// AddressRequest is an address created together with the property.
type AddressRequest struct {
	Street    string   `json:"street" validate:"required"`
	City      string   `json:"city" validate:"required"`
	Zone      string   `json:"zone" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CreatePropertyRequest represents the request body for capturing a property.
// Exactly one of AddressID or Address is expected.
type CreatePropertyRequest struct {
	AddressID           *uuid.UUID      `json:"address_id"`
	Address             *AddressRequest `json:"address"`
	OwnerCI             string          `json:"owner_ci" validate:"required"`
	PublicCode          string          `json:"public_code" validate:"required,notblank,max=50"`
	Title               string          `json:"title" validate:"required,notblank,max=200"`
	Description         string          `json:"description"`
	Price               float64         `json:"price" validate:"gte=0"`
	Currency            string          `json:"currency"`
	Surface             float64         `json:"surface"`
	OperationType       string          `json:"operation_type" validate:"required"`
	CaptureCommission   *float64        `json:"capture_commission"`
	PlacementCommission *float64        `json:"placement_commission"`
}

// UpdatePropertyRequest represents a partial update; absent fields are kept.
type UpdatePropertyRequest struct {
	OwnerCI             *string  `json:"owner_ci"`
	Title               *string  `json:"title"`
	Description         *string  `json:"description"`
	Price               *float64 `json:"price"`
	Currency            *string  `json:"currency"`
	Surface             *float64 `json:"surface"`
	OperationType       *string  `json:"operation_type"`
	CaptureCommission   *float64 `json:"capture_commission"`
	PlacementCommission *float64 `json:"placement_commission"`
}

// ClosePropertyRequest represents the request body for closing an operation
type ClosePropertyRequest struct {
	PlacerID   uuid.UUID `json:"placer_id"`
	FinalPrice *float64  `json:"final_price"`
}

// Create handles property capture
func (h *PropertyHandler) Create(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "CONTEXT_ERROR", "Caller not found in context")
	}

	var req CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid property input")
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	input := &usecase.CreatePropertyInput{
		AddressID:           req.AddressID,
		OwnerCI:             req.OwnerCI,
		PublicCode:          req.PublicCode,
		Title:               req.Title,
		Description:         req.Description,
		Price:               req.Price,
		Currency:            req.Currency,
		Surface:             req.Surface,
		OperationType:       req.OperationType,
		CaptureCommission:   req.CaptureCommission,
		PlacementCommission: req.PlacementCommission,
	}
	if req.Address != nil {
		input.Address = &usecase.AddressInput{
			Street:    req.Address.Street,
			City:      req.Address.City,
			Zone:      req.Address.Zone,
			Latitude:  req.Address.Latitude,
			Longitude: req.Address.Longitude,
		}
	}

	property, err := h.propertyUC.Create(c.Request().Context(), actor, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newPropertyResponse(property, h.now()))
}

// List handles filtered, paginated listing
func (h *PropertyHandler) List(c echo.Context) error {
	input := &usecase.ListPropertiesInput{
		OperationType: optionalString(c, "operation_type"),
		State:         optionalString(c, "state"),
		OwnerCI:       optionalString(c, "owner_ci"),
	}

	var err error
	floats := []struct {
		name   string
		target **float64
	}{
		{"min_price", &input.MinPrice},
		{"max_price", &input.MaxPrice},
		{"min_surface", &input.MinSurface},
		{"max_surface", &input.MaxSurface},
	}
	for _, f := range floats {
		if *f.target, err = optionalFloat(c, f.name); err != nil {
			return response.BadRequest(c, "INVALID_QUERY", f.name+" must be a number")
		}
	}
	if raw := c.QueryParam("captor_id"); raw != "" {
		captorID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_QUERY", "captor_id must be a valid uuid")
		}
		input.CaptorID = &captorID
	}
	if input.Page, err = optionalInt(c, "page"); err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "page must be an integer")
	}
	if input.PageSize, err = optionalInt(c, "page_size"); err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "page_size must be an integer")
	}

	output, err := h.propertyUC.List(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	today := h.now()
	items := make([]PropertyResponse, 0, len(output.Items))
	for _, p := range output.Items {
		items = append(items, newPropertyResponse(p, today))
	}

	return response.Success(c, http.StatusOK, PropertyPageResponse{
		Items:      items,
		Total:      output.Total,
		Page:       output.Page,
		PageSize:   output.PageSize,
		TotalPages: output.TotalPages,
	})
}

// Get handles lookup by id
func (h *PropertyHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid property ID")
	}

	property, err := h.propertyUC.GetByID(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPropertyResponse(property, h.now()))
}

// GetByCode handles lookup by public code
func (h *PropertyHandler) GetByCode(c echo.Context) error {
	property, err := h.propertyUC.GetByPublicCode(c.Request().Context(), c.Param("codigo"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPropertyResponse(property, h.now()))
}

// ListingQR returns the listing QR image as PNG
func (h *PropertyHandler) ListingQR(c echo.Context) error {
	png, err := h.propertyUC.ListingQR(c.Request().Context(), c.Param("codigo"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// Update handles partial updates
func (h *PropertyHandler) Update(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "CONTEXT_ERROR", "Caller not found in context")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid property ID")
	}

	var req UpdatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid property input")
	}

	property, err := h.propertyUC.Update(c.Request().Context(), actor, id, &usecase.UpdatePropertyInput{
		OwnerCI:             req.OwnerCI,
		Title:               req.Title,
		Description:         req.Description,
		Price:               req.Price,
		Currency:            req.Currency,
		Surface:             req.Surface,
		OperationType:       req.OperationType,
		CaptureCommission:   req.CaptureCommission,
		PlacementCommission: req.PlacementCommission,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPropertyResponse(property, h.now()))
}

// Delete soft-deletes a property
func (h *PropertyHandler) Delete(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "CONTEXT_ERROR", "Caller not found in context")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid property ID")
	}

	if err := h.propertyUC.Delete(c.Request().Context(), actor, id); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.NoContent(c)
}

// Publish handles the publish transition
func (h *PropertyHandler) Publish(c echo.Context) error {
	return h.transition(c, h.propertyUC.Publish)
}

// MarkInProcess handles the in-process transition
func (h *PropertyHandler) MarkInProcess(c echo.Context) error {
	return h.transition(c, h.propertyUC.MarkInProcess)
}

// Reserve handles the reserve transition
func (h *PropertyHandler) Reserve(c echo.Context) error {
	return h.transition(c, h.propertyUC.Reserve)
}

// Deactivate handles the deactivate transition
func (h *PropertyHandler) Deactivate(c echo.Context) error {
	return h.transition(c, h.propertyUC.Deactivate)
}

// Reactivate handles the reactivate transition
func (h *PropertyHandler) Reactivate(c echo.Context) error {
	return h.transition(c, h.propertyUC.Reactivate)
}

// Close handles closing an operation
func (h *PropertyHandler) Close(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "CONTEXT_ERROR", "Caller not found in context")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid property ID")
	}

	var req ClosePropertyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid close input")
	}

	property, err := h.propertyUC.Close(c.Request().Context(), actor, id, &usecase.ClosePropertyInput{
		PlacerID:   req.PlacerID,
		FinalPrice: req.FinalPrice,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPropertyResponse(property, h.now()))
}

// Commission returns the commission breakdown, optionally on ?final_price=
func (h *PropertyHandler) Commission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid property ID")
	}
	finalPrice, err := optionalFloat(c, "final_price")
	if err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "final_price must be a number")
	}

	output, err := h.propertyUC.Commission(c.Request().Context(), id, finalPrice)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, CommissionResponse{
		Base:      newMoneyResponse(output.Base),
		Capture:   newMoneyResponse(output.Capture),
		Placement: newMoneyResponse(output.Placement),
		Total:     newMoneyResponse(output.Total),
	})
}

type transitionFunc func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*entity.Property, error)

func (h *PropertyHandler) transition(c echo.Context, apply transitionFunc) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "CONTEXT_ERROR", "Caller not found in context")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid property ID")
	}

	property, err := apply(c.Request().Context(), actor, id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPropertyResponse(property, h.now()))
}

func optionalString(c echo.Context, name string) *string {
	if raw := c.QueryParam(name); raw != "" {
		return &raw
	}

	return nil
}

func optionalFloat(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil //nolint:nilnil // absent is not an error
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err //nolint:wrapcheck // reported as a 400 by the caller
	}

	return &v, nil
}

func optionalInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}

	return strconv.Atoi(raw) //nolint:wrapcheck // reported as a 400 by the caller
}
