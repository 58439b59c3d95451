package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/queue"
	"github.com/iliyamo/expo-management/internal/repository"
	queue_publisher "github.com/iliyamo/expo-management/internal/service"
)

// CommunicationHandler serves the messaging surface shared by every
// authenticated role: direct messages, threads, read state and the
// appointment sub-workflow on appointment_request messages.
type CommunicationHandler struct {
	DB       *sql.DB
	Messages *repository.CommunicationRepo
	Users    *repository.UserRepo
	ExpoRepo *repository.ExpoRepo
}

type sendMessageReq struct {
	RecipientID          uint64     `json:"recipient_id" validate:"required"`
	ExpoID               *uint64    `json:"expo_id"`
	Subject              string     `json:"subject" validate:"required,min=1,max=255"`
	Body                 string     `json:"body" validate:"required,min=1"`
	MessageType          string     `json:"message_type" validate:"required"`
	Priority             string     `json:"priority"`
	RelatedApplicationID *uint64    `json:"related_application_id"`
	RelatedBoothID       *uint64    `json:"related_booth_id"`
	AppointmentAt        *time.Time `json:"appointment_at"`
	AppointmentPlace     *string    `json:"appointment_place"`
}

// SendMessage delivers a new message. Appointment requests must carry a
// proposed time and start with a pending appointment status.
func (h *CommunicationHandler) SendMessage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req sendMessageReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidMessageType(req.MessageType) {
		return fail(c, http.StatusBadRequest, "invalid message type")
	}
	if req.Priority == "" {
		req.Priority = model.MessagePriorityNormal
	}
	if !model.ValidMessagePriority(req.Priority) {
		return fail(c, http.StatusBadRequest, "invalid priority")
	}
	if req.RecipientID == uid {
		return fail(c, http.StatusBadRequest, "cannot message yourself")
	}
	if req.MessageType == model.MessageTypeAppointmentRequest && req.AppointmentAt == nil {
		return fail(c, http.StatusBadRequest, "appointment requests need a proposed time")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.Users.GetByID(ctx, req.RecipientID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "recipient not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if req.ExpoID != nil {
		if _, err := h.ExpoRepo.GetByID(ctx, *req.ExpoID); err != nil {
			if isNoRows(err) {
				return fail(c, http.StatusNotFound, "expo not found")
			}
			return fail(c, http.StatusInternalServerError, "query failed")
		}
	}

	m := model.Message{
		SenderID:             uid,
		RecipientID:          req.RecipientID,
		ExpoID:               req.ExpoID,
		Subject:              req.Subject,
		Body:                 req.Body,
		MessageType:          req.MessageType,
		Priority:             req.Priority,
		RelatedApplicationID: req.RelatedApplicationID,
		RelatedBoothID:       req.RelatedBoothID,
		AppointmentAt:        req.AppointmentAt,
		AppointmentPlace:     req.AppointmentPlace,
	}
	if err := h.Messages.Create(ctx, &m); err != nil {
		return fail(c, http.StatusInternalServerError, "send failed")
	}
	return ok(c, http.StatusCreated, "message sent", m)
}

// ListMessages returns the caller's inbox or sent box with optional
// type and status filters.
func (h *CommunicationHandler) ListMessages(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	limit, offset := paginate(c)
	f := repository.MessageFilter{
		Box:         c.QueryParam("box"),
		MessageType: c.QueryParam("message_type"),
		Status:      c.QueryParam("status"),
		Limit:       limit,
		Offset:      offset,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	msgs, err := h.Messages.ListForUser(ctx, uid, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "messages", msgs)
}

// GetMessage returns one message. A recipient's first view of a
// delivered message flips it to read.
func (h *CommunicationHandler) GetMessage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	msgID, okID := pathID(c, "message_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid message id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	m, err := h.Messages.GetByID(ctx, msgID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "message not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !m.ParticipantOf(uid) {
		return fail(c, http.StatusForbidden, "not a participant")
	}
	if m.MarkReadOnView(uid) {
		if err := h.Messages.MarkRead(ctx, msgID, uid); err == nil {
			m.Status = model.MessageStatusRead
			now := time.Now().UTC()
			m.ReadAt = &now
		}
	}
	return ok(c, http.StatusOK, "message", m)
}

// GetThread returns a root message and all its replies in order.
func (h *CommunicationHandler) GetThread(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	msgID, okID := pathID(c, "message_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid message id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	thread, err := h.Messages.ListThread(ctx, msgID, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "message not found")
		}
		return repoError(c, err, "query failed")
	}
	return ok(c, http.StatusOK, "thread", thread)
}

type replyReq struct {
	Subject  string `json:"subject" validate:"required,min=1,max=255"`
	Body     string `json:"body" validate:"required,min=1"`
	Priority string `json:"priority"`
}

// Reply answers an existing message. The reply and the parent's flip to
// replied commit together.
func (h *CommunicationHandler) Reply(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	msgID, okID := pathID(c, "message_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid message id")
	}
	var req replyReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Priority == "" {
		req.Priority = model.MessagePriorityNormal
	}
	if !model.ValidMessagePriority(req.Priority) {
		return fail(c, http.StatusBadRequest, "invalid priority")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	parent, err := h.Messages.GetByID(ctx, msgID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "message not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !parent.ParticipantOf(uid) {
		return fail(c, http.StatusForbidden, "not a participant")
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

	reply := model.Message{
		SenderID: uid,
		Subject:  req.Subject,
		Body:     req.Body,
		Priority: req.Priority,
	}
	if err := h.Messages.ReplyTx(ctx, tx, &parent, &reply); err != nil {
		return fail(c, http.StatusInternalServerError, "reply failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true
	return ok(c, http.StatusCreated, "reply sent", reply)
}

type markReadReq struct {
	IDs []uint64 `json:"ids"`
}

// MarkAllRead flips delivered inbox messages to read. An optional ids
// list narrows the update to those messages; IDs the caller does not
// receive are skipped. An empty body marks the whole inbox.
func (h *CommunicationHandler) MarkAllRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req markReadReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid request body")
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	var n int64
	if len(req.IDs) > 0 {
		n, err = h.Messages.MarkReadByIDs(ctx, uid, req.IDs)
	} else {
		n, err = h.Messages.MarkAllRead(ctx, uid)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return ok(c, http.StatusOK, "messages marked read", echo.Map{"updated": n})
}

// UnreadCount reports how many delivered messages await the caller.
func (h *CommunicationHandler) UnreadCount(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	n, err := h.Messages.UnreadCount(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "unread count", echo.Map{"unread": n})
}

type appointmentReq struct {
	Status string `json:"status" validate:"required"`
}

// UpdateAppointment records the recipient's decision on an appointment
// request and notifies the requester.
func (h *CommunicationHandler) UpdateAppointment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	msgID, okID := pathID(c, "message_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid message id")
	}
	var req appointmentReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !model.ValidAppointmentStatus(req.Status) {
		return fail(c, http.StatusBadRequest, "invalid appointment status")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Messages.UpdateAppointment(ctx, msgID, uid, req.Status); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "message not found")
		}
		return repoError(c, err, "update appointment failed")
	}

	if m, err := h.Messages.GetByID(ctx, msgID); err == nil {
		ev := queue.NotificationEvent{
			UserID:   m.SenderID,
			SenderID: uid,
			Event:    queue.EventAppointmentDecided,
			Title:    "Appointment " + req.Status,
			Body:     "Your appointment request \"" + m.Subject + "\" was " + req.Status + ".",
		}
		if m.ExpoID != nil {
			ev.ExpoID = *m.ExpoID
		}
		go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()
	}
	return ok(c, http.StatusOK, "appointment updated", echo.Map{"appointment_status": req.Status})
}

// ArchiveMessage hides a message from both boxes.
func (h *CommunicationHandler) ArchiveMessage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	msgID, okID := pathID(c, "message_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid message id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Messages.Archive(ctx, msgID, uid); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "message not found")
		}
		return repoError(c, err, "archive failed")
	}
	return ok(c, http.StatusOK, "message archived", nil)
}

// Conversation returns the caller's two-way history with another user
// within one expo, oldest first. Viewing flips the counterparty's
// delivered messages to read.
func (h *CommunicationHandler) Conversation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	otherID, okID := pathID(c, "user_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	expoID, okID := pathID(c, "expo_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid expo id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.Users.GetByID(ctx, otherID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	msgs, err := h.Messages.Conversation(ctx, uid, otherID, expoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "conversation", msgs)
}

// BoothMessages returns the caller's messages that reference one booth,
// newest first.
func (h *CommunicationHandler) BoothMessages(c echo.Context) error {
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
	msgs, err := h.Messages.ListByBooth(ctx, uid, boothID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "booth messages", msgs)
}

// AppointmentRequests lists pending appointment requests awaiting the
// caller's decision, oldest first.
func (h *CommunicationHandler) AppointmentRequests(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	msgs, err := h.Messages.ListAppointmentRequests(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "appointment requests", msgs)
}
