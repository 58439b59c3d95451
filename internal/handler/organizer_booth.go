package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/repository"
)

type boothReq struct {
	BoothNumber string  `json:"booth_number" validate:"required,max=20"`
	Width       float64 `json:"width" validate:"required,gt=0"`
	Height      float64 `json:"height" validate:"required,gt=0"`
	Floor       string  `json:"floor" validate:"required,max=20"`
	Zone        *string `json:"zone" validate:"omitempty,max=50"`
	PriceCents  uint32  `json:"price_cents"`
	Category    string  `json:"category" validate:"required"`
	IsActive    *bool   `json:"is_active"`
}

// CreateBooth adds a booth to an expo the caller owns. Booth numbers
// are unique within the expo.
func (h *OrganizerHandler) CreateBooth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	expoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid expo id")
	}
	var req boothReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidBoothCategory(req.Category) {
		return fail(c, http.StatusBadRequest, "unknown booth category")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, err := h.ExpoRepo.GetByID(ctx, expoID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if e.OrganizerID != uid && !isAdmin(c) {
		return fail(c, http.StatusForbidden, "forbidden")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	b := model.Booth{
		ExpoID:      expoID,
		BoothNumber: req.BoothNumber,
		Width:       req.Width,
		Height:      req.Height,
		Floor:       req.Floor,
		Zone:        req.Zone,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Status:      model.BoothStatusAvailable,
		IsActive:    isActive,
	}
	if err := h.BoothRepo.Create(ctx, &b); err != nil {
		if err == repository.ErrBoothNumberExists {
			return fail(c, http.StatusConflict, "booth number already exists in this expo")
		}
		return fail(c, http.StatusInternalServerError, "create booth failed")
	}
	return ok(c, http.StatusCreated, "booth created", b)
}

// ListBooths returns the booths of an expo the caller owns, with
// reservation details visible.
func (h *OrganizerHandler) ListBooths(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	expoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid expo id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, err := h.ExpoRepo.GetByID(ctx, expoID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if e.OrganizerID != uid && !isAdmin(c) {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	booths, err := h.BoothRepo.ListByExpo(ctx, expoID, repository.BoothFilter{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Floor:    c.QueryParam("floor"),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "booths", booths)
}

// UpdateBooth rewrites a booth's descriptive fields.
func (h *OrganizerHandler) UpdateBooth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	boothID, okID := pathID(c, "booth_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid booth id")
	}
	var req boothReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidBoothCategory(req.Category) {
		return fail(c, http.StatusBadRequest, "unknown booth category")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	b, err := h.boothForOrganizer(ctx, boothID, uid, isAdmin(c))
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return repoError(c, err, "query failed")
	}

	b.BoothNumber = req.BoothNumber
	b.Width = req.Width
	b.Height = req.Height
	b.Floor = req.Floor
	b.Zone = req.Zone
	b.PriceCents = req.PriceCents
	b.Category = req.Category
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if err := h.BoothRepo.Update(ctx, &b); err != nil {
		if err == repository.ErrBoothNumberExists {
			return fail(c, http.StatusConflict, "booth number already exists in this expo")
		}
		return fail(c, http.StatusInternalServerError, "update booth failed")
	}
	return ok(c, http.StatusOK, "booth updated", b)
}

type maintenanceReq struct {
	Maintenance bool `json:"maintenance"`
}

// SetBoothMaintenance toggles a booth in or out of maintenance.
func (h *OrganizerHandler) SetBoothMaintenance(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	boothID, okID := pathID(c, "booth_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid booth id")
	}
	var req maintenanceReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.boothForOrganizer(ctx, boothID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return repoError(c, err, "query failed")
	}
	if err := h.BoothRepo.SetMaintenance(ctx, boothID, req.Maintenance); err != nil {
		return repoError(c, err, "update booth failed")
	}
	return ok(c, http.StatusOK, "booth updated", nil)
}

// DeleteBooth removes a booth that holds no reservation.
func (h *OrganizerHandler) DeleteBooth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	boothID, okID := pathID(c, "booth_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid booth id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.boothForOrganizer(ctx, boothID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return repoError(c, err, "query failed")
	}
	if err := h.BoothRepo.Delete(ctx, boothID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return repoError(c, err, "delete booth failed")
	}
	return ok(c, http.StatusOK, "booth deleted", nil)
}

// boothForOrganizer loads a booth and enforces that the caller organizes
// its expo. Admins skip the ownership check. It returns sql.ErrNoRows
// when the booth is missing and repository.ErrForbidden on an ownership
// mismatch.
func (h *OrganizerHandler) boothForOrganizer(ctx context.Context, boothID, uid uint64, admin bool) (model.Booth, error) {
	b, err := h.BoothRepo.GetByID(ctx, boothID)
	if err != nil {
		return b, err
	}
	e, err := h.ExpoRepo.GetByID(ctx, b.ExpoID)
	if err != nil {
		return b, err
	}
	if !admin && e.OrganizerID != uid {
		return b, repository.ErrForbidden
	}
	return b, nil
}
