package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/queue"
	"github.com/iliyamo/expo-management/internal/repository"
	queue_publisher "github.com/iliyamo/expo-management/internal/service"
)

// ListApplications returns the applications submitted to one of the
// caller's expos, optionally filtered by status.
func (h *OrganizerHandler) ListApplications(c echo.Context) error {
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
	apps, err := h.ApplicationRepo.ListByExpoForOrganizer(ctx, expoID, uid, isAdmin(c), c.QueryParam("status"))
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "query failed")
	}
	return ok(c, http.StatusOK, "applications", apps)
}

// StartReview moves a pending application to under_review.
func (h *OrganizerHandler) StartReview(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	appID, okID := pathID(c, "application_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid application id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.ApplicationRepo.StartReview(ctx, appID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return repoError(c, err, "start review failed")
	}
	return ok(c, http.StatusOK, "review started", echo.Map{"status": model.ApplicationStatusUnderReview})
}

type decisionReq struct {
	Decision        string  `json:"decision" validate:"required"`
	ReviewNotes     *string `json:"review_notes"`
	AssignedBoothID *uint64 `json:"assigned_booth_id"`
}

// validateDecision checks the decision value and the booth pairing
// before any database work. Approvals may carry a booth; rejections may
// not.
func validateDecision(req decisionReq) (string, bool) {
	if !model.ValidDecision(req.Decision) {
		return "decision must be approved or rejected", false
	}
	if req.AssignedBoothID != nil && req.Decision != model.ApplicationStatusApproved {
		return "assigned_booth_id requires an approve decision", false
	}
	return "", true
}

// ReviewApplication records an approve or reject decision. The update
// is conditional on the application still being undecided, so two
// concurrent reviewers cannot both win. An approve decision may carry
// assigned_booth_id; the decision and the booth claim then commit
// together, so an unavailable booth leaves the application undecided.
func (h *OrganizerHandler) ReviewApplication(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	appID, okID := pathID(c, "application_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid application id")
	}
	var req decisionReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if msg, valid := validateDecision(req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.ApplicationRepo.CheckOrganizer(ctx, appID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return repoError(c, err, "query failed")
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.ApplicationRepo.GetForAssignTx(ctx, tx, appID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if err := h.ApplicationRepo.DecideTx(ctx, tx, appID, uid, req.Decision, req.ReviewNotes); err != nil {
		return repoError(c, err, "review failed")
	}
	if req.AssignedBoothID != nil {
		booth, err := h.BoothRepo.GetByID(ctx, *req.AssignedBoothID)
		if err != nil {
			if isNoRows(err) {
				return fail(c, http.StatusNotFound, "booth not found")
			}
			return fail(c, http.StatusInternalServerError, "query failed")
		}
		if booth.ExpoID != a.ExpoID {
			return fail(c, http.StatusBadRequest, "booth belongs to a different expo")
		}
		if err := h.BoothRepo.ReserveTx(ctx, tx, *req.AssignedBoothID, a.ExhibitorID); err != nil {
			if err == repository.ErrBoothUnavailable {
				return fail(c, http.StatusConflict, "booth is not available")
			}
			return fail(c, http.StatusInternalServerError, "reserve booth failed")
		}
		if err := h.ApplicationRepo.SetBoothTx(ctx, tx, appID, req.AssignedBoothID); err != nil {
			return fail(c, http.StatusInternalServerError, "assign booth failed")
		}
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	ev := queue.NotificationEvent{
		UserID:   a.ExhibitorID,
		SenderID: uid,
		Event:    queue.EventApplicationDecided,
		Title:    "Application " + req.Decision,
		Body:     fmt.Sprintf("Your application #%d was %s.", a.ID, req.Decision),
		ExpoID:   a.ExpoID,
	}
	go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()

	return ok(c, http.StatusOK, "application "+req.Decision, echo.Map{"status": req.Decision})
}

type assignBoothReq struct {
	BoothID uint64 `json:"booth_id" validate:"required"`
}

// AssignBooth reserves a booth for an approved application. The whole
// operation is one transaction: the application row is locked, any
// previously assigned booth is released, and the new booth is claimed
// with a conditional update. Losing the claim race surfaces as a 409.
func (h *OrganizerHandler) AssignBooth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	appID, okID := pathID(c, "application_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid application id")
	}
	var req assignBoothReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.ApplicationRepo.CheckOrganizer(ctx, appID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return repoError(c, err, "query failed")
	}

	booth, err := h.BoothRepo.GetByID(ctx, req.BoothID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.ApplicationRepo.GetForAssignTx(ctx, tx, appID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if a.Status != model.ApplicationStatusApproved {
		return fail(c, http.StatusUnprocessableEntity, "only approved applications can receive a booth")
	}
	if booth.ExpoID != a.ExpoID {
		return fail(c, http.StatusBadRequest, "booth belongs to a different expo")
	}
	if a.AssignedBoothID != nil && *a.AssignedBoothID == req.BoothID {
		return fail(c, http.StatusConflict, "booth already assigned to this application")
	}

	// Release the previous booth before claiming the new one so the
	// exhibitor never holds two.
	if a.AssignedBoothID != nil {
		if err := h.BoothRepo.ReleaseTx(ctx, tx, *a.AssignedBoothID); err != nil {
			return fail(c, http.StatusInternalServerError, "release previous booth failed")
		}
	}
	if err := h.BoothRepo.ReserveTx(ctx, tx, req.BoothID, a.ExhibitorID); err != nil {
		if err == repository.ErrBoothUnavailable {
			return fail(c, http.StatusConflict, "booth is not available")
		}
		return fail(c, http.StatusInternalServerError, "reserve booth failed")
	}
	if err := h.ApplicationRepo.SetBoothTx(ctx, tx, appID, &req.BoothID); err != nil {
		return fail(c, http.StatusInternalServerError, "assign booth failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	ev := queue.NotificationEvent{
		UserID:   a.ExhibitorID,
		SenderID: uid,
		Event:    queue.EventBoothAssigned,
		Title:    "Booth assigned",
		Body:     fmt.Sprintf("Booth %s was assigned to your application #%d.", booth.BoothNumber, a.ID),
		ExpoID:   a.ExpoID,
	}
	go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()

	return ok(c, http.StatusOK, "booth assigned", echo.Map{"booth_id": req.BoothID})
}

// ReleaseBooth detaches the booth from an application and returns it to
// the available pool, again in one transaction.
func (h *OrganizerHandler) ReleaseBooth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	appID, okID := pathID(c, "application_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid application id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.ApplicationRepo.CheckOrganizer(ctx, appID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return repoError(c, err, "query failed")
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.ApplicationRepo.GetForAssignTx(ctx, tx, appID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if a.AssignedBoothID == nil {
		return fail(c, http.StatusUnprocessableEntity, "application has no assigned booth")
	}
	boothID := *a.AssignedBoothID
	if err := h.BoothRepo.ReleaseTx(ctx, tx, boothID); err != nil {
		return fail(c, http.StatusInternalServerError, "release booth failed")
	}
	if err := h.ApplicationRepo.SetBoothTx(ctx, tx, appID, nil); err != nil {
		return fail(c, http.StatusInternalServerError, "clear booth failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	ev := queue.NotificationEvent{
		UserID:   a.ExhibitorID,
		SenderID: uid,
		Event:    queue.EventBoothReleased,
		Title:    "Booth released",
		Body:     fmt.Sprintf("The booth for application #%d was released.", a.ID),
		ExpoID:   a.ExpoID,
	}
	go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()

	return ok(c, http.StatusOK, "booth released", nil)
}

// ListRegistrations returns an expo's registrations to its organizer.
func (h *OrganizerHandler) ListRegistrations(c echo.Context) error {
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
	regs, err := h.RegistrationRepo.ListByExpoForOrganizer(ctx, expoID, uid, isAdmin(c))
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "query failed")
	}
	return ok(c, http.StatusOK, "registrations", regs)
}

// CheckInRegistration marks a registration attended at the door.
func (h *OrganizerHandler) CheckInRegistration(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	regID, okID := pathID(c, "registration_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid registration id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.RegistrationRepo.CheckInForOrganizer(ctx, regID, uid, isAdmin(c)); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "registration not found")
		}
		return repoError(c, err, "check-in failed")
	}

	if reg, err := h.RegistrationRepo.GetByID(ctx, regID); err == nil {
		ev := queue.NotificationEvent{
			UserID:   reg.AttendeeID,
			SenderID: uid,
			Event:    queue.EventRegistrationCheckin,
			Title:    "Checked in",
			Body:     fmt.Sprintf("Registration %s was checked in.", reg.ConfirmationCode),
			ExpoID:   reg.ExpoID,
		}
		go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()
	}
	return ok(c, http.StatusOK, "checked in", echo.Map{"status": model.RegistrationStatusAttended})
}

// ApplicationStats returns per-status application counters for one of
// the caller's expos.
func (h *OrganizerHandler) ApplicationStats(c echo.Context) error {
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
	stats, err := h.ApplicationRepo.StatsByExpo(ctx, expoID, uid, isAdmin(c))
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "query failed")
	}
	return ok(c, http.StatusOK, "application stats", stats)
}

// RegistrationStats returns per-status registration counters and the
// settled revenue for one of the caller's expos.
func (h *OrganizerHandler) RegistrationStats(c echo.Context) error {
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
	stats, err := h.RegistrationRepo.StatsByExpo(ctx, expoID, uid, isAdmin(c))
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return repoError(c, err, "query failed")
	}
	return ok(c, http.StatusOK, "registration stats", stats)
}
