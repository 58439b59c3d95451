package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/handler"
	"github.com/iliyamo/expo-management/internal/middleware"
	"github.com/iliyamo/expo-management/internal/model"
)

// RegisterAttendee registers attendee-scoped endpoints under /v1.
func RegisterAttendee(e *echo.Echo, a *handler.AttendeeHandler, jwtSecret string) {
	g := e.Group(
		"/v1/attendee",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAttendee, model.RoleAdmin),
	)

	g.POST("/expos/:id/registrations", a.RegisterExpo)
	g.POST("/sessions/:session_id/registrations", a.RegisterSession)
	g.GET("/registrations", a.MyRegistrations)
	g.DELETE("/registrations/:registration_id", a.CancelRegistration)
	g.POST("/registrations/:registration_id/payment", a.ConfirmPayment)
	g.POST("/registrations/:registration_id/feedback", a.SubmitFeedback)
}
