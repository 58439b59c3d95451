package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/handler"
	"github.com/iliyamo/expo-management/internal/middleware"
	"github.com/iliyamo/expo-management/internal/model"
)

// RegisterOrganizer registers organizer-scoped endpoints under /v1.
// All routes require a valid JWT and the organizer or admin role.
func RegisterOrganizer(e *echo.Echo, o *handler.OrganizerHandler, jwtSecret string) {
	g := e.Group(
		"/v1/organizer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin),
	)

	// ---- Expos ----
	g.POST("/expos", o.CreateExpo)
	g.GET("/expos", o.ListMyExpos)
	g.PUT("/expos/:id", o.UpdateExpo)
	g.PATCH("/expos/:id/status", o.UpdateExpoStatus)
	g.PATCH("/expos/:id/publish", o.PublishExpo)
	g.DELETE("/expos/:id", o.DeleteExpo)
	g.GET("/expos/:id/stats", o.ExpoStats)

	// ---- Booths ----
	g.POST("/expos/:id/booths", o.CreateBooth)
	g.GET("/expos/:id/booths", o.ListBooths)
	g.PUT("/booths/:booth_id", o.UpdateBooth)
	g.PATCH("/booths/:booth_id/maintenance", o.SetBoothMaintenance)
	g.DELETE("/booths/:booth_id", o.DeleteBooth)

	// ---- Sessions ----
	g.POST("/expos/:id/sessions", o.CreateSession)
	g.PUT("/sessions/:session_id", o.UpdateSession)
	g.PATCH("/sessions/:session_id/status", o.UpdateSessionStatus)
	g.DELETE("/sessions/:session_id", o.DeleteSession)
	g.POST("/sessions/:session_id/speakers", o.AddSpeaker)
	g.DELETE("/sessions/:session_id/speakers/:speaker_id", o.RemoveSpeaker)
	g.POST("/sessions/:session_id/materials", o.AddMaterial)
	g.DELETE("/sessions/:session_id/materials/:material_id", o.RemoveMaterial)

	// ---- Applications ----
	g.GET("/expos/:id/applications", o.ListApplications)
	g.PATCH("/applications/:application_id/review/start", o.StartReview)
	g.PATCH("/applications/:application_id/review", o.ReviewApplication)
	g.POST("/applications/:application_id/booth", o.AssignBooth)
	g.DELETE("/applications/:application_id/booth", o.ReleaseBooth)

	// ---- Registrations ----
	g.GET("/expos/:id/registrations", o.ListRegistrations)
	g.PATCH("/registrations/:registration_id/check-in", o.CheckInRegistration)

	// ---- Dashboards ----
	g.GET("/expos/:id/applications/stats", o.ApplicationStats)
	g.GET("/expos/:id/registrations/stats", o.RegistrationStats)
}
