package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestActorMiddleware_ReadsHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(ActorHeader, "asha")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := ActorMiddleware()(func(c echo.Context) error {
		seen = GetActor(c)
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if seen != "asha" {
		t.Errorf("Expected actor asha, got %s", seen)
	}
}

func TestActorMiddleware_DefaultsToSystem(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := ActorMiddleware()(func(c echo.Context) error {
		seen = GetActor(c)
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if seen != DefaultActor {
		t.Errorf("Expected default actor, got %s", seen)
	}
}

func TestGetActor_WithoutMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if got := GetActor(c); got != DefaultActor {
		t.Errorf("Expected default actor, got %s", got)
	}
}
