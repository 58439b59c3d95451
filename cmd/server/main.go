package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/config"
	"github.com/iliyamo/expo-management/internal/database"
	"github.com/iliyamo/expo-management/internal/handler"
	"github.com/iliyamo/expo-management/internal/queue"
	"github.com/iliyamo/expo-management/internal/repository"
	"github.com/iliyamo/expo-management/internal/router"
	"github.com/iliyamo/expo-management/migrations"
)

func main() {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	migCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := migrations.Apply(migCtx, db); err != nil {
		cancel()
		log.Fatalf("migrations: %v", err)
	}
	cancel()

	users := &repository.UserRepo{DB: db}
	tokens := &repository.TokenRepo{DB: db}
	expos := repository.NewExpoRepo(db)
	booths := repository.NewBoothRepo(db)
	exhibitors := repository.NewExhibitorRepo(db)
	applications := repository.NewApplicationRepo(db)
	sessions := repository.NewSessionRepo(db)
	registrations := repository.NewRegistrationRepo(db)
	messages := repository.NewCommunicationRepo(db)
	notifications := repository.NewNotificationRepo(db)

	auth := &handler.AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
	organizer := &handler.OrganizerHandler{
		DB:               db,
		ExpoRepo:         expos,
		BoothRepo:        booths,
		SessionRepo:      sessions,
		ApplicationRepo:  applications,
		RegistrationRepo: registrations,
	}
	exhibitor := &handler.ExhibitorHandler{
		DB:           db,
		Exhibitors:   exhibitors,
		Applications: applications,
		ExpoRepo:     expos,
		Booths:       booths,
	}
	attendee := &handler.AttendeeHandler{
		DB:            db,
		Registrations: registrations,
		ExpoRepo:      expos,
		SessionRepo:   sessions,
	}
	comms := &handler.CommunicationHandler{DB: db, Messages: messages, Users: users, ExpoRepo: expos}
	notify := &handler.NotificationHandler{Notifications: notifications}
	public := &handler.PublicHandler{ExpoRepo: expos, BoothRepo: booths, SessionRepo: sessions, Exhibitors: exhibitors}

	e := echo.New()
	e.HideBanner = true

	router.ApplyInfra(e, config.NewRedisClient())
	router.RegisterRoutes(e, public)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterShared(e, comms, notify, cfg.JWTSecret)
	router.RegisterOrganizer(e, organizer, cfg.JWTSecret)
	router.RegisterExhibitor(e, exhibitor, cfg.JWTSecret)
	router.RegisterAttendee(e, attendee, cfg.JWTSecret)
	router.RegisterAdmin(e, exhibitor, cfg.JWTSecret)

	// The consumer drains notification.dispatch into the notifications
	// table and reconnects on broker failures.
	go queue.StartNotificationConsumer(notifications)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
