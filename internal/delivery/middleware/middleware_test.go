package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"brokerage/config"
	deliverycontext "brokerage/internal/delivery/context"
	"brokerage/internal/domain/entity"
	"brokerage/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewRequestIDMiddleware(logger)

	var seenCtxID, seenEchoID string
	handler := mw.Process(func(c echo.Context) error {
		seenEchoID = deliverycontext.GetRequestID(c)
		seenCtxID = deliverycontext.GetRequestIDFromContext(c.Request().Context())
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), logger).Info("inside")

		return c.NoContent(http.StatusNoContent)
	})

	t.Run("propagates client id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(deliverycontext.HeaderXRequestID, "req-123")
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, "req-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
		assert.Equal(t, "req-123", seenEchoID)
		assert.Equal(t, "req-123", seenCtxID)
		assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	})

	t.Run("replaces malformed client id", func(t *testing.T) {
		for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("a", 65)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(deliverycontext.HeaderXRequestID, bad)
			rec := httptest.NewRecorder()

			require.NoError(t, handler(e.NewContext(req, rec)))
			got := rec.Header().Get(deliverycontext.HeaderXRequestID)
			assert.NotEqual(t, bad, got)
			assert.True(t, deliverycontext.ValidRequestID(got), "generated %q", got)
		}
	})

	t.Run("generates id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
		assert.Equal(t, seenEchoID, seenCtxID)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	cfg := &config.Config{}

	e := echo.New()
	mw := NewLoggerMiddleware(logger, cfg)

	ok := mw.Handle(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	rec := httptest.NewRecorder()
	require.NoError(t, ok(e.NewContext(httptest.NewRequest(http.MethodGet, "/ok", nil), rec)))
	assert.Empty(t, buf.String())

	failing := mw.Handle(func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "missing") })
	rec = httptest.NewRecorder()
	require.NoError(t, failing(e.NewContext(httptest.NewRequest(http.MethodGet, "/missing", nil), rec)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestSetActor_TagsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(deliverycontext.WithLogger(req.Context(), logger))
	c := e.NewContext(req, httptest.NewRecorder())

	_, ok := deliverycontext.GetActor(c)
	assert.False(t, ok)

	actor := usecase.Actor{UserID: uuid.New(), Email: "ana@inmobiliaria.com", Role: entity.RoleAdvisor}
	deliverycontext.SetActor(c, actor)

	got, ok := deliverycontext.GetActor(c)
	require.True(t, ok)
	assert.Equal(t, actor, got)

	deliverycontext.GetLoggerOrDefault(c.Request().Context(), nil).Info("scoped")
	assert.Contains(t, buf.String(), `"user_id":"`+actor.UserID.String()+`"`)
	assert.Contains(t, buf.String(), `"role":"ASESOR"`)
}
