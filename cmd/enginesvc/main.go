package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/coder/quartz"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/ronheaslet/pkrnight-sub001/configs"
	mongodb "github.com/ronheaslet/pkrnight-sub001/internal/db"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/audit"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/broker"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/db"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/engine"
	handlers "github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/handlers"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/service"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/store"
	nats "github.com/ronheaslet/pkrnight-sub001/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "engine"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// mongo holds the audit trail
	auditDb, cancelMongo, err := mongodb.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to audit DB: %v", err)
	}
	defer cancelMongo()

	if err := mongodb.CreateTTLIndexForCollection(auditDb, "audit_entries"); err != nil {
		log.Warnf("unable to ensure audit TTL index: %v", err)
	}
	auditSink := audit.NewSink(auditDb)

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME + "-" + instanceId)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	b := broker.NewBroker(n.Conn, instanceId)

	gameClock := engine.NewGameClock(quartz.NewReal())

	gameStore := store.NewGameStore(dbpool)
	sessionStore := store.NewSessionStore(dbpool)
	tableStore := store.NewTableStore(dbpool)
	txStore := store.NewTransactionStore(dbpool)
	treasuryStore := store.NewTreasuryStore(dbpool)
	configStore := store.NewClubConfigStore(dbpool)
	linkStore := store.NewPlayerLinkStore(dbpool)
	blindStore := store.NewBlindStore(dbpool)

	clockService := service.NewClockService(gameClock, gameStore, sessionStore,
		blindStore, b, b, b, auditSink)
	clockService.SetClockFeed(b)
	seatingService := service.NewSeatingService(gameClock, gameStore, sessionStore,
		tableStore, b, b, auditSink)
	ledgerService := service.NewLedgerService(gameStore, sessionStore, txStore,
		treasuryStore, configStore, b, auditSink)
	standingsService := service.NewStandingsService(gameStore, sessionStore,
		linkStore, configStore, b)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(clockService, seatingService, ledgerService, standingsService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
