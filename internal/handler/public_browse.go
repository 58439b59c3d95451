// This file defines the unauthenticated browsing API.  Guests can list
// published expos, inspect an expo's programme and see which booths are
// still open.  Sensitive fields (exhibitor identities, reservation
// timestamps, organizer ownership) are filtered from responses.

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/repository"
)

// PublicHandler aggregates the repositories needed for guest browsing.
type PublicHandler struct {
	ExpoRepo    *repository.ExpoRepo
	BoothRepo   *repository.BoothRepo
	SessionRepo *repository.SessionRepo
	Exhibitors  *repository.ExhibitorRepo
}

// PublicBooth is a booth as shown to guests: position, price and
// availability only.
type PublicBooth struct {
	ID          uint64  `json:"id"`
	BoothNumber string  `json:"booth_number"`
	Floor       string  `json:"floor"`
	Zone        *string `json:"zone,omitempty"`
	Area        float64 `json:"area"`
	PriceCents  uint32  `json:"price_cents"`
	Category    string  `json:"category"`
	Available   bool    `json:"available"`
}

// ListExpos returns published public expos with optional status, city
// and search filters.
func (h *PublicHandler) ListExpos(c echo.Context) error {
	limit, offset := paginate(c)
	f := repository.ExpoFilter{
		Status: c.QueryParam("status"),
		City:   c.QueryParam("city"),
		Search: c.QueryParam("search"),
		Limit:  limit,
		Offset: offset,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	expos, err := h.ExpoRepo.ListPublic(ctx, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "expos", expos)
}

// GetExpo returns one expo. Drafts and private expos are hidden from
// guests; organizers reach their own drafts through the organizer API.
func (h *PublicHandler) GetExpo(c echo.Context) error {
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
	if !expo.IsPublic || expo.Status == model.ExpoStatusDraft {
		return fail(c, http.StatusNotFound, "expo not found")
	}
	return ok(c, http.StatusOK, "expo", expo)
}

// ListExpoSessions returns the programme of a published expo.
func (h *PublicHandler) ListExpoSessions(c echo.Context) error {
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
	if !expo.IsPublic || expo.Status == model.ExpoStatusDraft {
		return fail(c, http.StatusNotFound, "expo not found")
	}
	sessions, err := h.SessionRepo.ListByExpo(ctx, expoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "sessions", sessions)
}

// ListExpoBooths returns a sanitized booth map for a published expo.
// Guests see availability, not who reserved what.
func (h *PublicHandler) ListExpoBooths(c echo.Context) error {
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
	if !expo.IsPublic || expo.Status == model.ExpoStatusDraft {
		return fail(c, http.StatusNotFound, "expo not found")
	}
	booths, err := h.BoothRepo.ListByExpo(ctx, expoID, repository.BoothFilter{
		Category: c.QueryParam("category"),
		Floor:    c.QueryParam("floor"),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]PublicBooth, 0, len(booths))
	for _, b := range booths {
		if !b.IsActive {
			continue
		}
		out = append(out, PublicBooth{
			ID:          b.ID,
			BoothNumber: b.BoothNumber,
			Floor:       b.Floor,
			Zone:        b.Zone,
			Area:        b.Area,
			PriceCents:  b.PriceCents,
			Category:    b.Category,
			Available:   b.Status == model.BoothStatusAvailable,
		})
	}
	return ok(c, http.StatusOK, "booths", out)
}

// ListAvailableBooths returns only the booths still open for
// reservation in a published expo.
func (h *PublicHandler) ListAvailableBooths(c echo.Context) error {
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
	if !expo.IsPublic || expo.Status == model.ExpoStatusDraft {
		return fail(c, http.StatusNotFound, "expo not found")
	}
	booths, err := h.BoothRepo.ListByExpo(ctx, expoID, repository.BoothFilter{
		Status:   model.BoothStatusAvailable,
		Category: c.QueryParam("category"),
		Floor:    c.QueryParam("floor"),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]PublicBooth, 0, len(booths))
	for _, b := range booths {
		if !b.IsActive {
			continue
		}
		out = append(out, PublicBooth{
			ID:          b.ID,
			BoothNumber: b.BoothNumber,
			Floor:       b.Floor,
			Zone:        b.Zone,
			Area:        b.Area,
			PriceCents:  b.PriceCents,
			Category:    b.Category,
			Available:   true,
		})
	}
	return ok(c, http.StatusOK, "available booths", out)
}

// ExpoSchedule returns a published expo's programme grouped by day,
// days and sessions both in chronological order.
func (h *PublicHandler) ExpoSchedule(c echo.Context) error {
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
	if !expo.IsPublic || expo.Status == model.ExpoStatusDraft {
		return fail(c, http.StatusNotFound, "expo not found")
	}
	sessions, err := h.SessionRepo.ListByExpo(ctx, expoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	type scheduleDay struct {
		Date     string          `json:"date"`
		Sessions []model.Session `json:"sessions"`
	}
	days := make([]scheduleDay, 0)
	for _, s := range sessions {
		date := s.StartsAt.UTC().Format("2006-01-02")
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, scheduleDay{Date: date})
		}
		days[len(days)-1].Sessions = append(days[len(days)-1].Sessions, s)
	}
	return ok(c, http.StatusOK, "schedule", days)
}

// GetSession returns one session of a published expo with its speakers
// and materials.
func (h *PublicHandler) GetSession(c echo.Context) error {
	sessionID, okID := pathID(c, "session_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	s, err := h.SessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "session not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	expo, err := h.ExpoRepo.GetByID(ctx, s.ExpoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !expo.IsPublic || expo.Status == model.ExpoStatusDraft {
		return fail(c, http.StatusNotFound, "session not found")
	}
	return ok(c, http.StatusOK, "session", s)
}

// SearchSessions finds sessions across published expos by a free-text
// query against titles and descriptions.
func (h *PublicHandler) SearchSessions(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return fail(c, http.StatusBadRequest, "query parameter q is required")
	}
	limit, _ := paginate(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	sessions, err := h.SessionRepo.SearchPublic(ctx, query, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "sessions", sessions)
}

// ListPublicExhibitors returns the directory of verified exhibitor
// profiles.
func (h *PublicHandler) ListPublicExhibitors(c echo.Context) error {
	limit, offset := paginate(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	profiles, err := h.Exhibitors.ListVerified(ctx, limit, offset)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "exhibitors", profiles)
}
