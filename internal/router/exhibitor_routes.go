package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/handler"
	"github.com/iliyamo/expo-management/internal/middleware"
	"github.com/iliyamo/expo-management/internal/model"
)

// RegisterExhibitor registers exhibitor-scoped endpoints under /v1.
func RegisterExhibitor(e *echo.Echo, x *handler.ExhibitorHandler, jwtSecret string) {
	g := e.Group(
		"/v1/exhibitor",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleExhibitor, model.RoleAdmin),
	)

	// ---- Company profile ----
	g.POST("/profile", x.CreateProfile)
	g.GET("/profile", x.MyProfile)
	g.PUT("/profile", x.UpdateProfile)
	g.POST("/profile/products", x.AddProduct)
	g.DELETE("/profile/products/:product_id", x.DeleteProduct)
	g.POST("/profile/documents", x.AddDocument)
	g.DELETE("/profile/documents/:document_id", x.DeleteDocument)

	// ---- Applications ----
	g.POST("/expos/:id/applications", x.Apply)
	g.GET("/applications", x.MyApplications)
	g.GET("/applications/:application_id", x.GetApplication)
	g.PUT("/applications/:application_id", x.UpdateApplication)
	g.DELETE("/applications/:application_id", x.CancelApplication)

	// ---- Direct booth reservation ----
	b := e.Group(
		"/v1/booths",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleExhibitor, model.RoleAdmin),
	)
	b.POST("/:booth_id/reserve", x.ReserveBooth)
	b.POST("/:booth_id/checkin", x.CheckInBooth)

	// Release is shared: the reserving exhibitor, the expo's organizer
	// or an admin. The handler enforces who may release.
	shared := e.Group("/v1/booths", middleware.JWTAuth(jwtSecret))
	shared.POST("/:booth_id/release", x.ReleaseBoothDirect)
}
