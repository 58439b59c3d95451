package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/utils"
)

const testSecret = "unit-test-secret"

func authedRequest(t *testing.T, token string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e, e.NewContext(req, rec), rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "exhibitor", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	_, c, _ := authedRequest(t, at.Token)

	var gotID uint64
	var gotRole string
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		gotID, _ = c.Get("user_id").(uint64)
		gotRole, _ = c.Get("role").(string)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gotID != 42 {
		t.Errorf("user_id = %d, want 42", gotID)
	}
	if gotRole != "exhibitor" {
		t.Errorf("role = %q, want exhibitor", gotRole)
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	_, c, rec := authedRequest(t, "")

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		t.Fatal("handler must not run without a token")
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("body should carry the failure envelope, got %s", rec.Body.String())
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 42, "attendee", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	_, c, rec := authedRequest(t, at.Token)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		t.Fatal("handler must not run with a forged token")
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     interface{}
		allowed  []string
		wantCode int
	}{
		{"organizer allowed", "organizer", []string{"organizer", "admin"}, http.StatusOK},
		{"admin allowed", "admin", []string{"organizer", "admin"}, http.StatusOK},
		{"attendee rejected", "attendee", []string{"organizer", "admin"}, http.StatusForbidden},
		{"missing role rejected", nil, []string{"organizer"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/v1/organizer/expos", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.role != nil {
				c.Set("role", tt.role)
			}

			h := RequireRole(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}
