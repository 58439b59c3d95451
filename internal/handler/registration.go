package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/queue"
	"github.com/iliyamo/expo-management/internal/repository"
	queue_publisher "github.com/iliyamo/expo-management/internal/service"
	"github.com/iliyamo/expo-management/internal/utils"
)

// AttendeeHandler serves the attendee surface: registering for expos
// and sessions, payment confirmation, cancellation and feedback.
type AttendeeHandler struct {
	DB            *sql.DB
	Registrations *repository.RegistrationRepo
	ExpoRepo      *repository.ExpoRepo
	SessionRepo   *repository.SessionRepo
}

// RegisterExpo enrolls the caller in an expo. Free expos are paid
// immediately; priced ones start unpaid and wait for ConfirmPayment.
func (h *AttendeeHandler) RegisterExpo(c echo.Context) error {
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
	expo, err := h.ExpoRepo.GetByID(ctx, expoID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !expo.OpenForRegistration() {
		return fail(c, http.StatusUnprocessableEntity, "expo is not open for registration")
	}
	code, err := utils.ConfirmationCode()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue confirmation code")
	}

	reg := model.Registration{
		ExpoID:           expoID,
		AttendeeID:       uid,
		AmountCents:      expo.AttendeeFeeCents,
		ConfirmationCode: code,
	}
	if expo.AttendeeFeeCents == 0 {
		method := model.PaymentMethodFree
		reg.Paid = true
		reg.PaymentMethod = &method
	}
	if err := h.Registrations.CreateExpo(ctx, &reg); err != nil {
		if err == repository.ErrAlreadyRegistered {
			return fail(c, http.StatusConflict, "already registered for this expo")
		}
		return fail(c, http.StatusInternalServerError, "registration failed")
	}

	ev := queue.NotificationEvent{
		UserID: uid,
		Event:  queue.EventRegistrationCreated,
		Title:  "Registration received",
		Body:   fmt.Sprintf("You are registered for %s. Confirmation code %s.", expo.Title, code),
		ExpoID: expoID,
	}
	go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()

	return ok(c, http.StatusCreated, "registered", reg)
}

// RegisterSession books a seat at a session. The session row is locked,
// seat-consuming registrations are counted and the insert happens in the
// same transaction so the cap cannot be oversold.
func (h *AttendeeHandler) RegisterSession(c echo.Context) error {
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

	s, err := h.SessionRepo.GetForRegistrationTx(ctx, tx, sessionID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if s.Status != model.SessionStatusScheduled {
		return fail(c, http.StatusUnprocessableEntity, "session is not open for registration")
	}
	if !s.RegistrationRequired {
		return fail(c, http.StatusUnprocessableEntity, "session does not take registrations")
	}
	current, err := h.Registrations.CountForSessionTx(ctx, tx, sessionID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !model.SessionHasCapacity(current, s.MaxAttendees) {
		return fail(c, http.StatusConflict, "session is full")
	}

	code, err := utils.ConfirmationCode()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue confirmation code")
	}
	method := model.PaymentMethodFree
	reg := model.Registration{
		ExpoID:           s.ExpoID,
		SessionID:        &sessionID,
		AttendeeID:       uid,
		Paid:             true,
		PaymentMethod:    &method,
		ConfirmationCode: code,
	}
	if err := h.Registrations.CreateSessionTx(ctx, tx, &reg); err != nil {
		if err == repository.ErrAlreadyRegistered {
			return fail(c, http.StatusConflict, "already registered for this session")
		}
		return fail(c, http.StatusInternalServerError, "registration failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	ev := queue.NotificationEvent{
		UserID: uid,
		Event:  queue.EventRegistrationCreated,
		Title:  "Session seat booked",
		Body:   fmt.Sprintf("Your seat at %s is booked. Confirmation code %s.", s.Title, code),
		ExpoID: s.ExpoID,
	}
	go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()

	return ok(c, http.StatusCreated, "registered", reg)
}

// MyRegistrations lists the caller's registrations, newest first.
func (h *AttendeeHandler) MyRegistrations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	regs, err := h.Registrations.ListByAttendee(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "registrations", regs)
}

// CancelRegistration cancels one of the caller's registrations unless it
// has already been attended.
func (h *AttendeeHandler) CancelRegistration(c echo.Context) error {
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
	if err := h.Registrations.Cancel(ctx, regID, uid); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "registration not found")
		}
		return repoError(c, err, "cancel failed")
	}
	return ok(c, http.StatusOK, "registration cancelled", echo.Map{"status": model.RegistrationStatusCancelled})
}

type paymentReq struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// ConfirmPayment settles the fee on a registered registration and moves
// it to confirmed.
func (h *AttendeeHandler) ConfirmPayment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	regID, okID := pathID(c, "registration_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid registration id")
	}
	var req paymentReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidPaymentMethod(req.PaymentMethod) {
		return fail(c, http.StatusBadRequest, "invalid payment method")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	reg, err := h.Registrations.GetByID(ctx, regID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "registration not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if reg.AttendeeID != uid {
		return fail(c, http.StatusForbidden, "not your registration")
	}
	if err := h.Registrations.Confirm(ctx, regID, req.PaymentMethod); err != nil {
		return repoError(c, err, "payment confirmation failed")
	}
	return ok(c, http.StatusOK, "payment confirmed", echo.Map{"status": model.RegistrationStatusConfirmed})
}

type feedbackReq struct {
	Rating   uint8   `json:"rating" validate:"required"`
	Comments *string `json:"comments"`
}

// SubmitFeedback records a 1-5 rating after attendance.
func (h *AttendeeHandler) SubmitFeedback(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	regID, okID := pathID(c, "registration_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid registration id")
	}
	var req feedbackReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidRating(req.Rating) {
		return fail(c, http.StatusBadRequest, "rating must be between 1 and 5")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Registrations.SaveFeedback(ctx, regID, uid, req.Rating, req.Comments); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "registration not found")
		}
		return repoError(c, err, "feedback failed")
	}
	return ok(c, http.StatusOK, "feedback recorded", nil)
}
