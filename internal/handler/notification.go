package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/repository"
)

// NotificationHandler serves the notification feed written by the queue
// consumer.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	limit, offset := paginate(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Notifications.ListByUser(ctx, uid, limit, offset)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "notifications", items)
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, okID := pathID(c, "notification_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid notification id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "notification not found")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return ok(c, http.StatusOK, "notification marked read", nil)
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	n, err := h.Notifications.MarkAllRead(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return ok(c, http.StatusOK, "notifications marked read", echo.Map{"updated": n})
}
