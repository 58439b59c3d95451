package handler

import (
	"net/http"
	"testing"
)

func TestChangePassword_RejectsUnchangedPassword(t *testing.T) {
	h := &AuthHandler{}
	c, rec := jsonRequest(http.MethodPut, "/v1/me/password",
		`{"current_password":"samepassword","new_password":"samepassword"}`)
	c.Set("user_id", uint64(1))

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an unchanged password", rec.Code)
	}
}

func TestChangePassword_RejectsShortPassword(t *testing.T) {
	h := &AuthHandler{}
	c, rec := jsonRequest(http.MethodPut, "/v1/me/password",
		`{"current_password":"oldpassword","new_password":"short"}`)
	c.Set("user_id", uint64(1))

	if err := h.ChangePassword(c); err == nil {
		t.Fatal("short new password should be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
