package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/repository"
)

// OrganizerHandler bundles the repositories organizers use to manage
// their expos, booths, sessions and the review workflow.
type OrganizerHandler struct {
	DB               *sql.DB
	ExpoRepo         *repository.ExpoRepo
	BoothRepo        *repository.BoothRepo
	SessionRepo      *repository.SessionRepo
	ApplicationRepo  *repository.ApplicationRepo
	RegistrationRepo *repository.RegistrationRepo
}

type expoReq struct {
	Title                string     `json:"title" validate:"required,max=200"`
	Description          string     `json:"description" validate:"required"`
	Theme                *string    `json:"theme" validate:"omitempty,max=200"`
	StartDate            time.Time  `json:"start_date" validate:"required"`
	EndDate              time.Time  `json:"end_date" validate:"required"`
	Venue                string     `json:"venue" validate:"required,max=200"`
	Address              string     `json:"address" validate:"required,max=300"`
	City                 string     `json:"city" validate:"required,max=100"`
	Country              string     `json:"country" validate:"required,max=100"`
	MaxExhibitors        uint32     `json:"max_exhibitors" validate:"required,min=1"`
	MaxAttendees         uint32     `json:"max_attendees" validate:"required,min=1"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	ExhibitorFeeCents    uint32     `json:"exhibitor_fee_cents"`
	AttendeeFeeCents     uint32     `json:"attendee_fee_cents"`
	IsPublic             *bool      `json:"is_public"`
}

// CreateExpo creates a draft expo owned by the caller.
func (h *OrganizerHandler) CreateExpo(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req expoReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.EndDate.After(req.StartDate) {
		return fail(c, http.StatusBadRequest, "end_date must be after start_date")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	e := model.Expo{
		OrganizerID:          uid,
		Title:                req.Title,
		Description:          req.Description,
		Theme:                req.Theme,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Venue:                req.Venue,
		Address:              req.Address,
		City:                 req.City,
		Country:              req.Country,
		Status:               model.ExpoStatusDraft,
		MaxExhibitors:        req.MaxExhibitors,
		MaxAttendees:         req.MaxAttendees,
		RegistrationDeadline: req.RegistrationDeadline,
		ExhibitorFeeCents:    req.ExhibitorFeeCents,
		AttendeeFeeCents:     req.AttendeeFeeCents,
		IsPublic:             isPublic,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.ExpoRepo.Create(ctx, &e); err != nil {
		return fail(c, http.StatusInternalServerError, "create expo failed")
	}
	return ok(c, http.StatusCreated, "expo created", e)
}

// ListMyExpos returns the caller's expos, drafts included.
func (h *OrganizerHandler) ListMyExpos(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	expos, err := h.ExpoRepo.ListByOrganizer(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "expos", expos)
}

// UpdateExpo rewrites an expo the caller owns.
func (h *OrganizerHandler) UpdateExpo(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	expoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid expo id")
	}
	var req expoReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.EndDate.After(req.StartDate) {
		return fail(c, http.StatusBadRequest, "end_date must be after start_date")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	e := model.Expo{
		ID:                   expoID,
		Title:                req.Title,
		Description:          req.Description,
		Theme:                req.Theme,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Venue:                req.Venue,
		Address:              req.Address,
		City:                 req.City,
		Country:              req.Country,
		MaxExhibitors:        req.MaxExhibitors,
		MaxAttendees:         req.MaxAttendees,
		RegistrationDeadline: req.RegistrationDeadline,
		ExhibitorFeeCents:    req.ExhibitorFeeCents,
		AttendeeFeeCents:     req.AttendeeFeeCents,
		IsPublic:             isPublic,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.ExpoRepo.Update(ctx, uid, isAdmin(c), &e); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "update expo failed")
	}
	return ok(c, http.StatusOK, "expo updated", nil)
}

type expoStatusReq struct {
	Status string `json:"status" validate:"required"`
}

// UpdateExpoStatus moves an expo between lifecycle states.
func (h *OrganizerHandler) UpdateExpoStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	expoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid expo id")
	}
	var req expoStatusReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidExpoStatus(req.Status) {
		return fail(c, http.StatusBadRequest, "unknown status")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.ExpoRepo.UpdateStatus(ctx, expoID, uid, isAdmin(c), req.Status); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "update status failed")
	}
	return ok(c, http.StatusOK, "status updated", echo.Map{"status": req.Status})
}

// PublishExpo toggles an expo between draft and published.
func (h *OrganizerHandler) PublishExpo(c echo.Context) error {
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
	next := e.TogglePublish()
	if err := h.ExpoRepo.UpdateStatus(ctx, expoID, uid, isAdmin(c), next); err != nil {
		return repoError(c, err, "publish failed")
	}
	return ok(c, http.StatusOK, "status updated", echo.Map{"status": next})
}

// DeleteExpo removes an expo with no dependent records.
func (h *OrganizerHandler) DeleteExpo(c echo.Context) error {
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
	if err := h.ExpoRepo.Delete(ctx, expoID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "delete expo failed")
	}
	return ok(c, http.StatusOK, "expo deleted", nil)
}

// ExpoStats returns the dashboard counters for one expo.
func (h *OrganizerHandler) ExpoStats(c echo.Context) error {
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
	stats, err := h.ExpoRepo.GetStats(ctx, expoID, uid, isAdmin(c))
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "query failed")
	}
	return ok(c, http.StatusOK, "stats", stats)
}
