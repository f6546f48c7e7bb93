package impl

import (
	"context"
	"log/slog"
	"math"
	"time"

	"brokerage/config"
	deliverycontext "brokerage/internal/delivery/context"
	"brokerage/internal/domain/entity"
	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/repository"
	"brokerage/internal/domain/service"
	"brokerage/internal/domain/valueobject"
	"brokerage/internal/errors"
	"brokerage/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// publishedLabel names the publish step in events and metrics; the state itself does not change.
	publishedLabel = "PUBLICADA"

	qrContentType = "image/png"
)

// propertyService implements the PropertyUsecase interface.
type propertyService struct {
	txManager       repository.TransactionManager
	propertyRepo    repository.PropertyRepository
	cache           service.PropertyCache
	publisher       service.EventPublisher
	qrcode          service.QRCodeService
	assets          service.AssetStore
	metrics         service.MetricsRecorder
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
	now             func() time.Time
}

// PropertyServiceParams holds dependencies for PropertyService, injected by Fx.
type PropertyServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	PropertyRepo repository.PropertyRepository
	Cache        service.PropertyCache
	Publisher    service.EventPublisher
	QRCode       service.QRCodeService
	Assets       service.AssetStore
	Metrics      service.MetricsRecorder `optional:"true"`
	Config       *config.Config
	Logger       *slog.Logger
}

// NewPropertyService is the constructor for propertyService.
func NewPropertyService(params PropertyServiceParams) usecase.PropertyUsecase {
	srv := &propertyService{
		txManager:       params.TxManager,
		propertyRepo:    params.PropertyRepo,
		cache:           params.Cache,
		publisher:       params.Publisher,
		qrcode:          params.QRCode,
		assets:          params.Assets,
		metrics:         metricsOrNoop(params.Metrics),
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          params.Logger,
		now:             time.Now,
	}
	if params.Config != nil && params.Config.Pagination != nil {
		if params.Config.Pagination.DefaultPageSize > 0 {
			srv.defaultPageSize = params.Config.Pagination.DefaultPageSize
		}
		if params.Config.Pagination.MaxPageSize > 0 {
			srv.maxPageSize = params.Config.Pagination.MaxPageSize
		}
	}

	return srv
}

func (srv *propertyService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create captures a listing for the actor, creating its address first when given inline.
func (srv *propertyService) Create(ctx context.Context, actor usecase.Actor, input *usecase.CreatePropertyInput) (*entity.Property, error) {
	if err := actor.Role.Authorize(entity.PermissionCaptureProperty); err != nil {
		return nil, err
	}

	params, err := buildNewPropertyParams(input)
	if err != nil {
		return nil, err
	}
	params.CaptorID = actor.UserID

	var created *entity.Property
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		addressRepo := repoFactory.NewAddressRepository()
		propertyRepo := repoFactory.NewPropertyRepository()

		addressID, err := srv.resolveAddress(ctx, addressRepo, input)
		if err != nil {
			return err
		}
		params.AddressID = addressID

		if _, err := propertyRepo.FindByPublicCode(ctx, params.PublicCode); err == nil {
			return domainerrors.NewDuplicatePublicCodeError(params.PublicCode)
		} else if !errors.Is(err, repository.ErrPropertyNotFound) {
			return errors.Wrap(err, "failed to check public code")
		}

		property, err := entity.NewProperty(params, srv.now())
		if err != nil {
			return err
		}
		if err := propertyRepo.Create(ctx, property); err != nil {
			return errors.Wrap(err, "failed to create property")
		}
		created = property

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.metrics.RecordPropertyCreated()
	srv.emit(ctx, service.PropertyCreated, created, "", created.State.String(), actor)
	srv.log(ctx).Info("Property created", slog.Any("propertyID", created.ID), slog.String("code", created.PublicCode))

	return created, nil
}

func (srv *propertyService) resolveAddress(ctx context.Context, addressRepo repository.AddressRepository, input *usecase.CreatePropertyInput) (uuid.UUID, error) {
	if input.Address != nil {
		address, err := buildAddress(input.Address)
		if err != nil {
			return uuid.Nil, err
		}
		if err := addressRepo.Create(ctx, address); err != nil {
			return uuid.Nil, errors.Wrap(err, "failed to create address")
		}

		return address.ID, nil
	}

	if input.AddressID == nil {
		return uuid.Nil, domainerrors.NewInvalidValueError("Direccion", nil, "Debe indicar una dirección")
	}
	if _, err := addressRepo.FindByID(ctx, *input.AddressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return uuid.Nil, domainerrors.NewInvalidValueError("DireccionID", *input.AddressID, "Dirección no encontrada")
		}

		return uuid.Nil, errors.Wrap(err, "failed to find address")
	}

	return *input.AddressID, nil
}

func (srv *propertyService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	return findProperty(ctx, srv.propertyRepo, id)
}

// GetByPublicCode reads through the property cache.
func (srv *propertyService) GetByPublicCode(ctx context.Context, code string) (*entity.Property, error) {
	property, err := srv.cache.GetOrLoad(ctx, code, func(ctx context.Context) (*entity.Property, error) {
		return srv.propertyRepo.FindByPublicCode(ctx, code)
	})
	if errors.Is(err, repository.ErrPropertyNotFound) {
		return nil, domainerrors.ErrPropertyNotFound.WithDetails("código " + code)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find property by code")
	}

	return property, nil
}

// List clamps the page window and returns the matching page with totals.
func (srv *propertyService) List(ctx context.Context, input *usecase.ListPropertiesInput) (*usecase.ListPropertiesOutput, error) {
	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize < 1 || pageSize > srv.maxPageSize {
		pageSize = srv.defaultPageSize
	}
	// Keep (page-1)*pageSize inside int.
	page := min(max(input.Page, 1), math.MaxInt/pageSize)

	items, total, err := srv.propertyRepo.FindAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list properties")
	}

	return &usecase.ListPropertiesOutput{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Update applies the non-nil fields. An empty update returns the stored record.
func (srv *propertyService) Update(ctx context.Context, actor usecase.Actor, id uuid.UUID, input *usecase.UpdatePropertyInput) (*entity.Property, error) {
	if input.IsEmpty() {
		property, err := findProperty(ctx, srv.propertyRepo, id)
		if err != nil {
			return nil, err
		}
		if err := authorizeManage(actor, property); err != nil {
			return nil, err
		}

		return property, nil
	}

	var oldPrice valueobject.Money
	property, _, err := srv.mutate(ctx, actor, id, func(p *entity.Property) error {
		oldPrice = p.Price
		revision, err := buildRevision(p, input)
		if err != nil {
			return err
		}

		return p.Revise(revision)
	})
	if err != nil {
		return nil, err
	}

	if !property.Price.Equal(oldPrice) {
		srv.emit(ctx, service.PropertyPriceUpdated, property, "", "", actor)
	}

	return property, nil
}

// Delete soft-deletes through Deactivate.
func (srv *propertyService) Delete(ctx context.Context, actor usecase.Actor, id uuid.UUID) error {
	_, err := srv.Deactivate(ctx, actor, id)

	return err
}

func (srv *propertyService) Publish(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*entity.Property, error) {
	property, from, err := srv.mutate(ctx, actor, id, func(p *entity.Property) error {
		return p.Publish(srv.now())
	})
	if err != nil {
		return nil, err
	}
	srv.metrics.RecordTransition(publishedLabel)
	srv.emitTransition(ctx, service.PropertyPublished, property, from, publishedLabel, actor)

	return property, nil
}

func (srv *propertyService) MarkInProcess(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*entity.Property, error) {
	return srv.transition(ctx, actor, id, (*entity.Property).MarkInProcess)
}

func (srv *propertyService) Reserve(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*entity.Property, error) {
	return srv.transition(ctx, actor, id, (*entity.Property).Reserve)
}

func (srv *propertyService) Deactivate(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*entity.Property, error) {
	return srv.transition(ctx, actor, id, (*entity.Property).Deactivate)
}

// Reactivate is a no-op for anything but an inactive property.
func (srv *propertyService) Reactivate(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*entity.Property, error) {
	return srv.transition(ctx, actor, id, func(p *entity.Property) error {
		if !p.Reactivate() {
			return errNoChange
		}

		return nil
	})
}

// Close records the placer and optional final price in the property's currency.
func (srv *propertyService) Close(ctx context.Context, actor usecase.Actor, id uuid.UUID, input *usecase.ClosePropertyInput) (*entity.Property, error) {
	if input.PlacerID == uuid.Nil {
		return nil, domainerrors.NewInvalidValueError("Colocador", input.PlacerID, "Debe indicar el usuario colocador")
	}

	property, from, err := srv.mutate(ctx, actor, id, func(p *entity.Property) error {
		var finalPrice *valueobject.Money
		if input.FinalPrice != nil {
			price, err := valueobject.NewMoney(*input.FinalPrice, string(p.Price.Currency()))
			if err != nil {
				return err
			}
			finalPrice = &price
		}

		return p.Close(input.PlacerID, finalPrice, srv.now())
	})
	if err != nil {
		return nil, err
	}
	srv.metrics.RecordTransition(property.State.String())
	srv.emitTransition(ctx, service.PropertyClosed, property, from, property.State.String(), actor)

	return property, nil
}

// Commission computes both commissions on finalPrice, or on the published price.
func (srv *propertyService) Commission(ctx context.Context, id uuid.UUID, finalPrice *float64) (*usecase.CommissionOutput, error) {
	property, err := findProperty(ctx, srv.propertyRepo, id)
	if err != nil {
		return nil, err
	}

	var base *valueobject.Money
	if finalPrice != nil {
		price, err := valueobject.NewMoney(*finalPrice, string(property.Price.Currency()))
		if err != nil {
			return nil, err
		}
		base = &price
	}

	capture := property.CaptureCommissionAmount(base)
	placement := property.PlacementCommissionAmount(base)
	total, err := capture.Add(placement)
	if err != nil {
		return nil, err
	}

	output := &usecase.CommissionOutput{
		Base:      property.Price,
		Capture:   capture,
		Placement: placement,
		Total:     total,
	}
	if base != nil {
		output.Base = *base
	}

	return output, nil
}

// ListingQR returns the PNG for code, generating and storing it on first use.
func (srv *propertyService) ListingQR(ctx context.Context, code string) ([]byte, error) {
	property, err := srv.GetByPublicCode(ctx, code)
	if err != nil {
		return nil, err
	}

	key := "qr/" + property.PublicCode + ".png"
	data, err := srv.assets.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, service.ErrAssetNotFound) {
		srv.log(ctx).Warn("Failed to read cached QR", slog.String("key", key), slog.Any("error", err))
	}

	data, err = srv.qrcode.GenerateListingQR(property.PublicCode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate listing QR")
	}
	if err := srv.assets.Put(ctx, key, data, qrContentType); err != nil {
		srv.log(ctx).Warn("Failed to store QR", slog.String("key", key), slog.Any("error", err))
	}

	return data, nil
}

// errNoChange aborts a mutation whose transition left the property untouched.
var errNoChange = errors.New("no change")

// transition runs a state change and reports it as property.state_changed.
func (srv *propertyService) transition(ctx context.Context, actor usecase.Actor, id uuid.UUID, apply func(*entity.Property) error) (*entity.Property, error) {
	property, from, err := srv.mutate(ctx, actor, id, apply)
	if errors.Is(err, errNoChange) {
		return property, nil
	}
	if err != nil {
		return nil, err
	}

	srv.metrics.RecordTransition(property.State.String())
	srv.emitTransition(ctx, service.PropertyStateChanged, property, from, property.State.String(), actor)

	return property, nil
}

// mutate loads, authorizes, applies and persists inside one transaction, then
// evicts the cached copy. It returns the state before apply ran.
// When apply returns errNoChange the unchanged property is returned with it.
func (srv *propertyService) mutate(ctx context.Context, actor usecase.Actor, id uuid.UUID, apply func(*entity.Property) error) (*entity.Property, entity.PropertyState, error) {
	var (
		property *entity.Property
		from     entity.PropertyState
		oldCode  string
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		propertyRepo := repoFactory.NewPropertyRepository()

		current, err := findProperty(ctx, propertyRepo, id)
		if err != nil {
			return err
		}
		if err := authorizeManage(actor, current); err != nil {
			return err
		}
		from = current.State
		oldCode = current.PublicCode

		if err := apply(current); err != nil {
			if errors.Is(err, errNoChange) {
				property = current
			}

			return err
		}
		if err := propertyRepo.Update(ctx, current); err != nil {
			return errors.Wrap(err, "failed to update property")
		}
		property = current

		return nil
	})
	if errors.Is(err, errNoChange) {
		return property, from, errNoChange
	}
	if err != nil {
		return nil, from, err
	}

	if err := srv.cache.Evict(ctx, oldCode); err != nil {
		srv.log(ctx).Warn("Failed to evict cached property", slog.String("code", oldCode), slog.Any("error", err))
	}

	return property, from, nil
}

func (srv *propertyService) emitTransition(ctx context.Context, eventType service.PropertyEventType, p *entity.Property, from entity.PropertyState, to string, actor usecase.Actor) {
	srv.emit(ctx, eventType, p, from.String(), to, actor)
}

func (srv *propertyService) emit(ctx context.Context, eventType service.PropertyEventType, p *entity.Property, from, to string, actor usecase.Actor) {
	srv.publish(ctx, &service.PropertyEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		PropertyID: p.ID.String(),
		PublicCode: p.PublicCode,
		FromState:  from,
		ToState:    to,
		ActorID:    actor.UserID.String(),
		OccurredAt: srv.now().UTC(),
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
	})
}

// publish never fails the caller; the change is already persisted.
func (srv *propertyService) publish(ctx context.Context, event *service.PropertyEvent) {
	if err := srv.publisher.PublishPropertyEvent(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish property event",
			slog.String("event_type", string(event.Type)),
			slog.String("property_id", event.PropertyID),
			slog.Any("error", err),
		)
	}
}

func findProperty(ctx context.Context, repo repository.PropertyRepository, id uuid.UUID) (*entity.Property, error) {
	property, err := repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrPropertyNotFound) {
		return nil, domainerrors.ErrPropertyNotFound.WithDetails("id " + id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find property")
	}

	return property, nil
}

// authorizeManage lets the captor change their own listing; anyone else needs properties:manage.
func authorizeManage(actor usecase.Actor, p *entity.Property) error {
	if actor.UserID != uuid.Nil && actor.UserID == p.CaptorID {
		return nil
	}

	return actor.Role.Authorize(entity.PermissionManageProperties)
}

func buildNewPropertyParams(input *usecase.CreatePropertyInput) (entity.NewPropertyParams, error) {
	var params entity.NewPropertyParams

	ownerCI, err := valueobject.NewCI(input.OwnerCI)
	if err != nil {
		return params, err
	}
	price, err := valueobject.NewMoney(input.Price, input.Currency)
	if err != nil {
		return params, err
	}
	op, err := entity.ParseOperationType(input.OperationType)
	if err != nil {
		return params, err
	}
	capture, err := percentageOrZero(input.CaptureCommission)
	if err != nil {
		return params, err
	}
	placement, err := percentageOrZero(input.PlacementCommission)
	if err != nil {
		return params, err
	}

	return entity.NewPropertyParams{
		OwnerCI:             ownerCI,
		PublicCode:          input.PublicCode,
		Title:               input.Title,
		Description:         input.Description,
		Price:               price,
		Surface:             input.Surface,
		OperationType:       op,
		CaptureCommission:   capture,
		PlacementCommission: placement,
	}, nil
}

func buildAddress(input *usecase.AddressInput) (*entity.Address, error) {
	var coords *valueobject.Coordinates
	if input.Latitude != nil || input.Longitude != nil {
		if input.Latitude == nil || input.Longitude == nil {
			return nil, domainerrors.NewInvalidValueError("Coordenadas", nil, "Latitud y longitud van juntas")
		}
		c, err := valueobject.NewCoordinates(*input.Latitude, *input.Longitude)
		if err != nil {
			return nil, err
		}
		coords = &c
	}

	return entity.NewAddress(input.Street, input.City, input.Zone, coords)
}

func buildRevision(p *entity.Property, input *usecase.UpdatePropertyInput) (entity.PropertyRevision, error) {
	var revision entity.PropertyRevision

	if input.OwnerCI != nil {
		ci, err := valueobject.NewCI(*input.OwnerCI)
		if err != nil {
			return revision, err
		}
		revision.OwnerCI = &ci
	}
	if input.Price != nil || input.Currency != nil {
		amount := p.Price.Amount()
		if input.Price != nil {
			amount = *input.Price
		}
		currency := string(p.Price.Currency())
		if input.Currency != nil {
			currency = *input.Currency
		}
		price, err := valueobject.NewMoney(amount, currency)
		if err != nil {
			return revision, err
		}
		revision.Price = &price
	}
	if input.OperationType != nil {
		op, err := entity.ParseOperationType(*input.OperationType)
		if err != nil {
			return revision, err
		}
		revision.OperationType = &op
	}
	if input.CaptureCommission != nil {
		pct, err := valueobject.NewPercentage(*input.CaptureCommission)
		if err != nil {
			return revision, err
		}
		revision.CaptureCommission = &pct
	}
	if input.PlacementCommission != nil {
		pct, err := valueobject.NewPercentage(*input.PlacementCommission)
		if err != nil {
			return revision, err
		}
		revision.PlacementCommission = &pct
	}
	revision.Title = input.Title
	revision.Description = input.Description
	revision.Surface = input.Surface

	return revision, nil
}

func buildFilter(input *usecase.ListPropertiesInput) (repository.PropertyFilter, error) {
	filter := repository.PropertyFilter{
		MinSurface: input.MinSurface,
		MaxSurface: input.MaxSurface,
		CaptorID:   input.CaptorID,
	}

	if input.OwnerCI != nil {
		ci, err := valueobject.NewCI(*input.OwnerCI)
		if err != nil {
			return filter, err
		}
		owner := ci.String()
		filter.OwnerCI = &owner
	}

	if input.OperationType != nil {
		op, err := entity.ParseOperationType(*input.OperationType)
		if err != nil {
			return filter, err
		}
		filter.OperationType = &op
	}
	if input.State != nil {
		state, err := entity.ParsePropertyState(*input.State)
		if err != nil {
			return filter, err
		}
		filter.State = &state
	}
	filter.MinPriceCents = toCents(input.MinPrice)
	filter.MaxPriceCents = toCents(input.MaxPrice)

	return filter, nil
}

func toCents(amount *float64) *int64 {
	if amount == nil {
		return nil
	}
	cents := int64(math.Round(*amount * 100))

	return &cents
}

func percentageOrZero(v *float64) (valueobject.Percentage, error) {
	if v == nil {
		return valueobject.NewPercentage(0)
	}

	return valueobject.NewPercentage(*v)
}
