package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestEnvelope(t *testing.T) {
	c, rec := jsonRequest(http.MethodGet, "/", "")
	if err := ok(c, http.StatusOK, "done", echo.Map{"n": 1}); err != nil {
		t.Fatalf("ok: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["success"] != true || body["message"] != "done" {
		t.Errorf("unexpected success envelope: %v", body)
	}
	if _, has := body["data"]; !has {
		t.Error("data should be present when given")
	}

	c, rec = jsonRequest(http.MethodGet, "/", "")
	if err := fail(c, http.StatusConflict, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	body = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["success"] != false || body["message"] != "boom" {
		t.Errorf("unexpected failure envelope: %v", body)
	}
	if _, has := body["data"]; has {
		t.Error("failure envelope must not carry data")
	}
}

func TestBindAndValidate_RejectsBadBody(t *testing.T) {
	type dto struct {
		Name string `json:"name" validate:"required"`
	}

	c, rec := jsonRequest(http.MethodPost, "/", `{"name":""}`)
	var req dto
	if err := bindAndValidate(c, &req); err == nil {
		t.Fatal("missing required field should be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	c, rec = jsonRequest(http.MethodPost, "/", `{not json`)
	if err := bindAndValidate(c, &req); err == nil {
		t.Fatal("malformed JSON should be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	c, _ = jsonRequest(http.MethodPost, "/", `{"name":"fine"}`)
	if err := bindAndValidate(c, &req); err != nil {
		t.Fatalf("valid body rejected: %v", err)
	}
	if req.Name != "fine" {
		t.Errorf("bound name = %q, want fine", req.Name)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"?limit=5&offset=40", 5, 40},
		{"?limit=1000", 20, 0},
		{"?limit=-3&offset=-9", 20, 0},
		{"?limit=100", 100, 0},
	}
	for _, tt := range tests {
		c, _ := jsonRequest(http.MethodGet, "/"+tt.query, "")
		limit, offset := paginate(c)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("paginate(%q) = (%d,%d), want (%d,%d)", tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestPathID(t *testing.T) {
	c, _ := jsonRequest(http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("17")
	if id, okID := pathID(c, "id"); !okID || id != 17 {
		t.Errorf("pathID = (%d,%v), want (17,true)", id, okID)
	}

	c.SetParamValues("zero")
	if _, okID := pathID(c, "id"); okID {
		t.Error("non-numeric id should be rejected")
	}

	c.SetParamValues("0")
	if _, okID := pathID(c, "id"); okID {
		t.Error("zero id should be rejected")
	}
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	h := &AuthHandler{}
	c, rec := jsonRequest(http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.co","password":"longenough","role":"admin","first_name":"A","last_name":"B"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for self-assigned admin", rec.Code)
	}
}
