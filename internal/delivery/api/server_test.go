package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brokerage/config"
	"brokerage/internal/delivery/api/middleware"
	"brokerage/internal/delivery/api/router"
	"brokerage/internal/delivery/api/router/handler"
	"brokerage/internal/infra/auth"
	"brokerage/internal/infra/cache"
	"brokerage/internal/infra/metrics"
	"brokerage/internal/infra/persistence/memory"
	"brokerage/internal/infra/pubsub"
	"brokerage/internal/infra/qrcode"
	"brokerage/internal/infra/storage"
	"brokerage/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type testAPI struct {
	t *testing.T
	e *echo.Echo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{
		Auth:       &config.AuthConfig{BcryptCost: bcrypt.MinCost, AccessTokenTTL: 30 * time.Minute, RefreshTokenTTL: time.Hour},
		Pagination: &config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
		Metrics:    &config.MetricsConfig{Enabled: true, Namespace: "brokerage"},
	}
	cfg.SecretKey.Access = "access-secret"
	cfg.SecretKey.Refresh = "refresh-secret"
	cfg.HTTP.MaxRequestBodySize = "100KB"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	assets, err := storage.Open(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = assets.Close() })
	m := metrics.New(cfg)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager:    memory.NewTransactionManager(store),
		UserRepo:     memory.NewUserRepository(store),
		Hasher:       hasher,
		TokenService: tokens,
		Metrics:      m,
		Logger:       logger,
	})
	propertyUC := impl.NewPropertyService(impl.PropertyServiceParams{
		TxManager:    memory.NewTransactionManager(store),
		PropertyRepo: memory.NewPropertyRepository(store),
		Cache:        cache.NewNoopPropertyCache(),
		Publisher:    pubsub.NewNoopPublisher(logger),
		QRCode:       qrcode.NewQRCodeService(128, "M"),
		Assets:       assets,
		Metrics:      m,
		Config:       cfg,
		Logger:       logger,
	})

	e := NewEcho(cfg, logger, router.RouterParams{
		AuthHandler:     handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
		PropertyHandler: handler.NewPropertyHandler(handler.PropertyHandlerParams{PropertyUC: propertyUC, Logger: logger}),
		AuthMiddleware:  middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{TokenService: tokens}),
		Metrics:         m,
		Config:          cfg,
	})

	return &testAPI{t: t, e: e}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func (a *testAPI) registerAndLogin(email, role string) string {
	a.t.Helper()

	rec, _ := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": email, "password": "Password123", "password_confirm": "Password123", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": email, "password": "Password123"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var login handler.LoginResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &login))

	return login.AccessToken
}

func propertyBody(code string) map[string]any {
	return map[string]any{
		"address":              map[string]any{"street": "Av. Busch 45", "city": "Santa Cruz", "zone": "Centro"},
		"owner_ci":             "1234567",
		"public_code":          code,
		"title":                "Departamento céntrico",
		"price":                95000,
		"currency":             "USD",
		"surface":              85,
		"operation_type":       "VENTA",
		"capture_commission":   3,
		"placement_commission": 2,
	}
}

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, env.Meta.RequestID, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAPI_AuthFlow(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "not-an-email", "password": "x", "role": "BROKER"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "email must be a valid email", env.Error.Details)

	rec, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "a@b.com", "password": "Password123", "password_confirm": "Password124", "role": "BROKER"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password_confirm does not match", env.Error.Details)

	long := "Aa1" + strings.Repeat("x", 80)
	rec, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "a@b.com", "password": long, "password_confirm": long, "role": "BROKER"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_VALUE", env.Error.Code)

	rec, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "a@b.com", "password": "weak", "password_confirm": "weak", "role": "BROKER"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_VALUE", env.Error.Code)

	token := api.registerAndLogin("broker@inmobiliaria.com", "BROKER")

	rec, _ = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "BROKER@inmobiliaria.com", "password": "Password123", "password_confirm": "Password123", "role": "ASESOR"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "broker@inmobiliaria.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	rec, env = api.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me handler.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "BROKER", me.Role)
	assert.Equal(t, "broker", me.Username)
	assert.NotContains(t, string(env.Data), "password")

	rec, _ = api.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_DeactivateRequiresCapability(t *testing.T) {
	api := newTestAPI(t)
	brokerToken := api.registerAndLogin("broker@inmobiliaria.com", "BROKER")
	advisorToken := api.registerAndLogin("asesor@inmobiliaria.com", "ASESOR")

	rec, env := api.do(http.MethodGet, "/api/v1/auth/me", advisorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var advisor handler.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &advisor))

	rec, env = api.do(http.MethodPatch, "/api/v1/auth/users/"+advisor.ID.String()+"/deactivate", advisorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "UNAUTHORIZED_OPERATION", env.Error.Code)

	rec, env = api.do(http.MethodPatch, "/api/v1/auth/users/"+advisor.ID.String()+"/deactivate", brokerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deactivated handler.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &deactivated))
	assert.False(t, deactivated.IsActive)

	rec, _ = api.do(http.MethodGet, "/api/v1/auth/me", advisorToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_PropertyFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin("asesor@inmobiliaria.com", "ASESOR")

	rec, _ := api.do(http.MethodGet, "/api/v1/propiedades", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := api.do(http.MethodPost, "/api/v1/propiedades", token, propertyBody("PROP-001"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created handler.PropertyResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "DISPONIBLE", created.State)
	assert.InDelta(t, 95000.0, created.Price.Amount, 0.001)
	assert.Equal(t, "USD", created.Price.Currency)

	rec, env = api.do(http.MethodPost, "/api/v1/propiedades", token, propertyBody("PROP-001"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_PUBLIC_CODE", env.Error.Code)

	zero := propertyBody("PROP-002")
	zero["surface"] = 0
	rec, env = api.do(http.MethodPost, "/api/v1/propiedades", token, zero)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "BUSINESS_RULE_VIOLATION", env.Error.Code)

	id := created.ID.String()
	for _, step := range []struct {
		action string
		state  string
	}{
		{"publicar", "DISPONIBLE"},
		{"en-proceso", "EN_PROCESO"},
		{"reservar", "RESERVADA"},
	} {
		rec, env = api.do(http.MethodPost, "/api/v1/propiedades/"+id+"/"+step.action, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, step.action+": "+rec.Body.String())
		var p handler.PropertyResponse
		require.NoError(t, json.Unmarshal(env.Data, &p))
		assert.Equal(t, step.state, p.State, step.action)
	}

	rec, env = api.do(http.MethodPost, "/api/v1/propiedades/"+id+"/publicar", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", env.Error.Code)

	rec, env = api.do(http.MethodGet, "/api/v1/propiedades/"+id+"/comision?final_price=100000", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var commission handler.CommissionResponse
	require.NoError(t, json.Unmarshal(env.Data, &commission))
	assert.InDelta(t, 5000.0, commission.Total.Amount, 0.001)

	rec, env = api.do(http.MethodPost, "/api/v1/propiedades/"+id+"/cerrar", token, map[string]any{
		"placer_id": created.CaptorID.String(), "final_price": 90000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var closed handler.PropertyResponse
	require.NoError(t, json.Unmarshal(env.Data, &closed))
	assert.Equal(t, "VENDIDA", closed.State)
	assert.InDelta(t, 90000.0, closed.Price.Amount, 0.001)

	rec, env = api.do(http.MethodGet, "/api/v1/propiedades/codigo/PROP-001", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var byCode handler.PropertyResponse
	require.NoError(t, json.Unmarshal(env.Data, &byCode))
	assert.Equal(t, created.ID, byCode.ID)

	rec, _ = api.do(http.MethodGet, "/api/v1/propiedades/codigo/PROP-001/qr", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec, _ = api.do(http.MethodGet, "/api/v1/propiedades/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(http.MethodGet, "/api/v1/propiedades/codigo/NOPE", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListAndDelete(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin("sec@inmobiliaria.com", "SECRETARIA")

	var ids []string
	for _, code := range []string{"A-1", "A-2", "A-3"} {
		rec, env := api.do(http.MethodPost, "/api/v1/propiedades", token, propertyBody(code))
		require.Equal(t, http.StatusCreated, rec.Code)
		var p handler.PropertyResponse
		require.NoError(t, json.Unmarshal(env.Data, &p))
		ids = append(ids, p.ID.String())
	}

	rec, _ := api.do(http.MethodDelete, "/api/v1/propiedades/"+ids[1], token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env := api.do(http.MethodGet, "/api/v1/propiedades?state=inactiva&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page handler.PropertyPageResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[1], page.Items[0].ID.String())

	rec, env = api.do(http.MethodGet, "/api/v1/propiedades?page=2&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	rec, _ = api.do(http.MethodGet, "/api/v1/propiedades?min_price=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = api.do(http.MethodPut, "/api/v1/propiedades/"+ids[0], token, map[string]any{"title": "Nuevo título"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated handler.PropertyResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Nuevo título", updated.Title)
}

func TestAPI_Metrics(t *testing.T) {
	api := newTestAPI(t)
	api.registerAndLogin("broker@inmobiliaria.com", "BROKER")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `brokerage_auth_logins_total{result="success"} 1`)
	assert.Contains(t, rec.Body.String(), "brokerage_auth_registrations_total 1")
}
