package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/booking"
	"github.com/mahmoud7895/loisirtt-portal/internal/config"
	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
	"github.com/mahmoud7895/loisirtt-portal/internal/database"
	"github.com/mahmoud7895/loisirtt-portal/internal/handler"
	"github.com/mahmoud7895/loisirtt-portal/internal/mailer"
	"github.com/mahmoud7895/loisirtt-portal/internal/middleware"
	"github.com/mahmoud7895/loisirtt-portal/internal/queue"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
	"github.com/mahmoud7895/loisirtt-portal/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; cache and limiter degrade

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	eventRegs := repository.NewEventRegistrationRepo(db)
	clubTypes := repository.NewClubTypeRepo(db)
	sportTypes := repository.NewSportTypeRepo(db)
	clubRegs := repository.NewClubMembershipRepo(db)
	sportRegs := repository.NewSportRegistrationRepo(db)
	reviews := repository.NewReviewRepo(db)
	stats := repository.NewStatsRepo(db)

	// Booking core and dashboard.
	ledger := booking.NewSQLLedger(db, events, eventRegs, clubRegs, sportRegs, clubTypes, sportTypes)
	bookingSvc := booking.NewService(ledger)
	hub := dashboard.NewHub(stats)

	// Background consumer: new-event notices fan out to agents by email.
	smtpPort, _ := strconv.Atoi(cfg.SMTPPort)
	m := mailer.New(cfg.SMTPHost, smtpPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUser)
	go queue.StartEventConsumer(cfg.AMQPURL, agentEmails{users}, m)

	// Hourly sweep: agents who attended a just-finished event receive an
	// email inviting them to leave a review.
	sweeper := mailer.NewInviteSweeper(inviteSource{events, eventRegs}, m, cfg.PortalURL, time.Hour)
	go sweeper.Run(context.Background())

	// HTTP wiring.
	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(events)
	clubTypeH := handler.NewTypeHandler(clubTypes, hub)
	sportTypeH := handler.NewTypeHandler(sportTypes, hub)
	regH := handler.NewRegistrationHandler(bookingSvc, eventRegs, clubRegs, sportRegs, hub)
	reviewH := handler.NewReviewHandler(reviews, events, eventRegs, sentimentClient(cfg), hub)
	adminEventH := handler.NewAdminEventHandler(cfg, events, eventRegs, bookingSvc, hub)
	clubRegH := handler.NewMembershipAdminHandler(clubRegs, hub)
	sportRegH := handler.NewMembershipAdminHandler(sportRegs, hub)
	dashH := handler.NewDashboardHandler(hub)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterAgent(e, catalogH, clubTypeH, sportTypeH, regH, reviewH, cfg, config.LoadCacheConfig(), rdb)
	router.RegisterAdmin(e, adminEventH, clubTypeH, sportTypeH, clubRegH, sportRegH, dashH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
