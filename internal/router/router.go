// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/expo-management/internal/config"
	"github.com/iliyamo/expo-management/internal/handler"
	"github.com/iliyamo/expo-management/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication: the
// health check and the guest browsing API.
func RegisterRoutes(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/healthz", handler.Health)

	e.GET("/v1/expos", p.ListExpos)
	e.GET("/v1/expos/:id", p.GetExpo)
	e.GET("/v1/expos/:id/sessions", p.ListExpoSessions)
	e.GET("/v1/expos/:id/schedule", p.ExpoSchedule)
	e.GET("/v1/expos/:id/booths", p.ListExpoBooths)
	e.GET("/v1/expos/:id/booths/available", p.ListAvailableBooths)
	e.GET("/v1/sessions/:session_id", p.GetSession)
	e.GET("/v1/search/sessions", p.SearchSessions)
	e.GET("/v1/exhibitors/public", p.ListPublicExhibitors)
}

// RegisterAuth registers the authentication endpoints.  Register, login
// and refresh live under /v1/auth without a session; profile endpoints
// require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateProfile)
	auth.PUT("/me/password", a.ChangePassword)
}

// RegisterShared registers endpoints available to every authenticated
// role: messaging and the notification feed.
func RegisterShared(e *echo.Echo, cm *handler.CommunicationHandler, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/messages", cm.SendMessage)
	g.GET("/messages", cm.ListMessages)
	g.GET("/messages/unread-count", cm.UnreadCount)
	g.POST("/messages/mark-all-read", cm.MarkAllRead)
	g.GET("/messages/:message_id", cm.GetMessage)
	g.GET("/messages/:message_id/thread", cm.GetThread)
	g.POST("/messages/:message_id/reply", cm.Reply)
	g.PATCH("/messages/:message_id/appointment", cm.UpdateAppointment)
	g.POST("/messages/:message_id/archive", cm.ArchiveMessage)
	g.GET("/conversations/:user_id/:expo_id", cm.Conversation)
	g.GET("/booths/:booth_id/messages", cm.BoothMessages)
	g.GET("/appointments/requests", cm.AppointmentRequests)

	g.GET("/notifications", n.List)
	g.PATCH("/notifications/:notification_id/read", n.MarkRead)
	g.POST("/notifications/mark-all-read", n.MarkAllRead)
}

// ApplyInfra attaches the cross-cutting Redis middleware: the token
// bucket rate limiter and the read-through response cache.  Both are
// no-ops when rdb is nil so the service still runs without Redis.
func ApplyInfra(e *echo.Echo, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
}
