package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
)

type sessionReq struct {
	Title                string    `json:"title" validate:"required,max=200"`
	Description          *string   `json:"description"`
	SessionType          string    `json:"session_type" validate:"required"`
	StartsAt             time.Time `json:"starts_at" validate:"required"`
	EndsAt               time.Time `json:"ends_at" validate:"required"`
	Room                 string    `json:"room" validate:"required,max=100"`
	Capacity             uint32    `json:"capacity" validate:"required,min=1"`
	MaxAttendees         *uint32   `json:"max_attendees" validate:"omitempty,min=1"`
	RegistrationRequired bool      `json:"registration_required"`
	FeeCents             uint32    `json:"fee_cents"`
}

// CreateSession schedules a programme item inside an expo's date range.
func (h *OrganizerHandler) CreateSession(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	expoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid expo id")
	}
	var req sessionReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidSessionType(req.SessionType) {
		return fail(c, http.StatusBadRequest, "unknown session type")
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
	if !model.ValidSessionWindow(req.StartsAt, req.EndsAt, &e) {
		return fail(c, http.StatusBadRequest, "session must fall inside the expo date range")
	}

	s := model.Session{
		ExpoID:               expoID,
		Title:                req.Title,
		Description:          req.Description,
		SessionType:          req.SessionType,
		StartsAt:             req.StartsAt,
		EndsAt:               req.EndsAt,
		Room:                 req.Room,
		Capacity:             req.Capacity,
		MaxAttendees:         req.MaxAttendees,
		RegistrationRequired: req.RegistrationRequired,
		FeeCents:             req.FeeCents,
		Status:               model.SessionStatusScheduled,
	}
	if err := h.SessionRepo.Create(ctx, &s); err != nil {
		return fail(c, http.StatusInternalServerError, "create session failed")
	}
	return ok(c, http.StatusCreated, "session created", s)
}

// UpdateSession rewrites a session the caller's expo owns.
func (h *OrganizerHandler) UpdateSession(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	var req sessionReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidSessionType(req.SessionType) {
		return fail(c, http.StatusBadRequest, "unknown session type")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.SessionRepo.CheckOrganizer(ctx, sessionID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "query failed")
	}
	s, err := h.SessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	e, err := h.ExpoRepo.GetByID(ctx, s.ExpoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !model.ValidSessionWindow(req.StartsAt, req.EndsAt, &e) {
		return fail(c, http.StatusBadRequest, "session must fall inside the expo date range")
	}

	s.Title = req.Title
	s.Description = req.Description
	s.SessionType = req.SessionType
	s.StartsAt = req.StartsAt
	s.EndsAt = req.EndsAt
	s.Room = req.Room
	s.Capacity = req.Capacity
	s.MaxAttendees = req.MaxAttendees
	s.RegistrationRequired = req.RegistrationRequired
	s.FeeCents = req.FeeCents
	if err := h.SessionRepo.Update(ctx, &s); err != nil {
		return fail(c, http.StatusInternalServerError, "update session failed")
	}
	return ok(c, http.StatusOK, "session updated", s)
}

type sessionStatusReq struct {
	Status string `json:"status" validate:"required"`
}

// UpdateSessionStatus moves a session between lifecycle states.
func (h *OrganizerHandler) UpdateSessionStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	var req sessionStatusReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidSessionStatus(req.Status) {
		return fail(c, http.StatusBadRequest, "unknown status")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.SessionRepo.CheckOrganizer(ctx, sessionID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "query failed")
	}
	s, err := h.SessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	s.Status = req.Status
	if err := h.SessionRepo.Update(ctx, &s); err != nil {
		return fail(c, http.StatusInternalServerError, "update session failed")
	}
	return ok(c, http.StatusOK, "status updated", echo.Map{"status": req.Status})
}

// DeleteSession removes a session with no active registrations.
func (h *OrganizerHandler) DeleteSession(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.SessionRepo.CheckOrganizer(ctx, sessionID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "query failed")
	}
	if err := h.SessionRepo.Delete(ctx, sessionID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "delete session failed")
	}
	return ok(c, http.StatusOK, "session deleted", nil)
}

type speakerReq struct {
	Name    string  `json:"name" validate:"required,max=150"`
	Title   *string `json:"title" validate:"omitempty,max=150"`
	Company *string `json:"company" validate:"omitempty,max=150"`
	Bio     *string `json:"bio"`
}

// AddSpeaker attaches a speaker to a session.
func (h *OrganizerHandler) AddSpeaker(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	var req speakerReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.SessionRepo.CheckOrganizer(ctx, sessionID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "query failed")
	}
	sp := model.Speaker{Name: req.Name, Title: req.Title, Company: req.Company, Bio: req.Bio}
	if err := h.SessionRepo.AddSpeaker(ctx, sessionID, &sp); err != nil {
		return fail(c, http.StatusInternalServerError, "add speaker failed")
	}
	return ok(c, http.StatusCreated, "speaker added", sp)
}

// RemoveSpeaker detaches a speaker from a session.
func (h *OrganizerHandler) RemoveSpeaker(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	speakerID := c.Param("speaker_id")
	if speakerID == "" {
		return fail(c, http.StatusBadRequest, "invalid speaker id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.SessionRepo.CheckOrganizer(ctx, sessionID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "query failed")
	}
	if err := h.SessionRepo.RemoveSpeaker(ctx, sessionID, speakerID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "speaker not found")
		}
		return fail(c, http.StatusInternalServerError, "remove speaker failed")
	}
	return ok(c, http.StatusOK, "speaker removed", nil)
}

type materialReq struct {
	Name         string `json:"name" validate:"required,max=150"`
	URL          string `json:"url" validate:"required,url"`
	MaterialType string `json:"material_type" validate:"required"`
}

// AddMaterial attaches collateral to a session.
func (h *OrganizerHandler) AddMaterial(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	var req materialReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidMaterialType(req.MaterialType) {
		return fail(c, http.StatusBadRequest, "unknown material type")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.SessionRepo.CheckOrganizer(ctx, sessionID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "query failed")
	}
	m := model.Material{Name: req.Name, URL: req.URL, MaterialType: req.MaterialType}
	if err := h.SessionRepo.AddMaterial(ctx, sessionID, &m); err != nil {
		return fail(c, http.StatusInternalServerError, "add material failed")
	}
	return ok(c, http.StatusCreated, "material added", m)
}

// RemoveMaterial detaches collateral from a session.
func (h *OrganizerHandler) RemoveMaterial(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	materialID := c.Param("material_id")
	if materialID == "" {
		return fail(c, http.StatusBadRequest, "invalid material id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.SessionRepo.CheckOrganizer(ctx, sessionID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return repoError(c, err, "query failed")
	}
	if err := h.SessionRepo.RemoveMaterial(ctx, sessionID, materialID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "material not found")
		}
		return fail(c, http.StatusInternalServerError, "remove material failed")
	}
	return ok(c, http.StatusOK, "material removed", nil)
}
