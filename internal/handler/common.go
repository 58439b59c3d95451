// Package handler exposes the HTTP handlers of the API. Every response
// uses a common envelope: {"success": bool, "message": string, "data": ...}
// with data omitted on failures.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/repository"
)

// validate is the shared validator for request DTOs. Struct tags carry
// the rules; handlers call bindAndValidate before touching the database.
var validate = validator.New()

// ok writes a success envelope.
func ok(c echo.Context, status int, message string, data interface{}) error {
	if data == nil {
		return c.JSON(status, echo.Map{"success": true, "message": message})
	}
	return c.JSON(status, echo.Map{"success": true, "message": message, "data": data})
}

// fail writes a failure envelope.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// errBadRequest marks a request rejected during binding or validation.
// The 400 envelope is already committed when it is returned, so echo's
// error handler leaves the response alone.
var errBadRequest = errors.New("invalid request")

// bindAndValidate binds the JSON body into req and runs struct
// validation. A non-nil return means the 400 response was already sent.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		_ = fail(c, http.StatusBadRequest, "invalid request body")
		return errBadRequest
	}
	if err := validate.Struct(req); err != nil {
		_ = fail(c, http.StatusBadRequest, "validation failed: "+err.Error())
		return errBadRequest
	}
	return nil
}

// getUserID extracts the authenticated user's ID from the context, as
// stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the caller holds the admin role. Admins pass
// expo ownership checks everywhere an organizer would.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// paginate reads limit/offset query parameters with sane bounds.
func paginate(c echo.Context) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// repoError translates repository sentinels into envelope responses.
// Unknown errors become a 500 with the given fallback message.
func repoError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "conflicting state")
	case errors.Is(err, repository.ErrInvalidState):
		return fail(c, http.StatusUnprocessableEntity, "operation not allowed in current state")
	case errors.Is(err, repository.ErrCapacityFull):
		return fail(c, http.StatusConflict, "capacity is full")
	default:
		return fail(c, http.StatusInternalServerError, fallback)
	}
}

// isNoRows reports whether err is the database's row-not-found error.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
