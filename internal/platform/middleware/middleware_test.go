package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID_Generates(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error { return nil })
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Error("expected a generated request id")
	}
	if rec.Header().Get(RequestIDHeader) != rid {
		t.Error("expected request id echoed in response header")
	}
}

func TestRequestID_HonorsExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error { return nil })
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if rid, _ := c.Get("request_id").(string); rid != "caller-supplied" {
		t.Errorf("expected caller-supplied id, got %q", rid)
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.Nop()
	h := Recovery(logger)(func(c echo.Context) error {
		panic("boom")
	})

	err := h(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
}

func TestTrace_PreservesBody(t *testing.T) {
	e := echo.New()
	payload := `{"name":"Sunrise Home"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	logger := zerolog.Nop()
	h := Trace(logger, true)(func(c echo.Context) error {
		b := make([]byte, len(payload))
		n, _ := c.Request().Body.Read(b)
		seen = string(b[:n])
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if seen != payload {
		t.Errorf("handler saw %q, want %q", seen, payload)
	}
}

func TestTrace_DisabledPassthrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Trace(zerolog.Nop(), false)(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Error("expected next handler to run")
	}
}
