package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/handler"
	"github.com/iliyamo/expo-management/internal/middleware"
	"github.com/iliyamo/expo-management/internal/model"
)

// RegisterAdmin registers admin-only endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, x *handler.ExhibitorHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.PATCH("/exhibitors/:exhibitor_id/verify", x.VerifyProfile)
}
