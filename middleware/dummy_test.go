package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummy_Active(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	payload := map[string]any{"message": "dummy", "count": float64(3)}

	calls := 0
	handler := Dummy(true, payload)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "real response")
	})

	require.NoError(t, handler(c))

	assert.Zero(t, calls, "handler must not run in dummy mode")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, payload, body)
}

func TestDummy_Inactive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	calls := 0
	handler := Dummy(false, map[string]string{"message": "dummy"})(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "real response")
	})

	require.NoError(t, handler(c))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "real response", rec.Body.String())
}

func TestDummy_InactivePropagatesHandlerError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Dummy(false, nil)(func(c echo.Context) error {
		return assert.AnError
	})

	assert.Equal(t, assert.AnError, handler(c))
}

func TestDummyWithConfig_CustomStatus(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := DummyWithConfig(DummyConfig{
		Active:  true,
		Payload: map[string]string{"status": "accepted"},
		Status:  http.StatusAccepted,
	})
	handler := mw(func(c echo.Context) error { return nil })

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestDummy_NoSideEffectsOfRealHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	created := false
	handler := Dummy(true, map[string]string{"order": "fake"})(func(c echo.Context) error {
		created = true
		return c.NoContent(http.StatusCreated)
	})

	require.NoError(t, handler(c))
	assert.False(t, created)
}
