package router

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/handler"
)

// TestRegisteredRoutes wires every route group against empty handlers
// and checks that the endpoints the API documents are actually bound.
func TestRegisteredRoutes(t *testing.T) {
	e := echo.New()
	const secret = "test-secret"

	RegisterRoutes(e, &handler.PublicHandler{})
	RegisterAuth(e, &handler.AuthHandler{}, secret)
	RegisterShared(e, &handler.CommunicationHandler{}, &handler.NotificationHandler{}, secret)
	RegisterOrganizer(e, &handler.OrganizerHandler{}, secret)
	RegisterExhibitor(e, &handler.ExhibitorHandler{}, secret)
	RegisterAttendee(e, &handler.AttendeeHandler{}, secret)
	RegisterAdmin(e, &handler.ExhibitorHandler{}, secret)

	got := make(map[string]bool, len(e.Routes()))
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}

	want := []string{
		// Guest browsing.
		http.MethodGet + " /v1/expos/:id/schedule",
		http.MethodGet + " /v1/expos/:id/booths/available",
		http.MethodGet + " /v1/sessions/:session_id",
		http.MethodGet + " /v1/search/sessions",
		http.MethodGet + " /v1/exhibitors/public",
		// Account.
		http.MethodPut + " /v1/me/password",
		// Direct booth reservation.
		http.MethodPost + " /v1/booths/:booth_id/reserve",
		http.MethodPost + " /v1/booths/:booth_id/checkin",
		http.MethodPost + " /v1/booths/:booth_id/release",
		// Messaging.
		http.MethodGet + " /v1/conversations/:user_id/:expo_id",
		http.MethodGet + " /v1/booths/:booth_id/messages",
		http.MethodGet + " /v1/appointments/requests",
		// Organizer dashboards.
		http.MethodGet + " /v1/organizer/expos/:id/applications/stats",
		http.MethodGet + " /v1/organizer/expos/:id/registrations/stats",
		// Admin.
		http.MethodPatch + " /v1/admin/exhibitors/:exhibitor_id/verify",
	}
	for _, route := range want {
		if !got[route] {
			t.Errorf("route %s is not registered", route)
		}
	}
}
