package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"nft-ticketing/internal/config"
	"nft-ticketing/internal/events"
	events_db "nft-ticketing/internal/events/db"
	"nft-ticketing/internal/events/event_api"
	"nft-ticketing/internal/issuance"
	"nft-ticketing/internal/kafka"
	"nft-ticketing/internal/ledger"
	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/marketplace"
	"nft-ticketing/internal/marketplace/market_api"
	"nft-ticketing/internal/metadata"
	"nft-ticketing/internal/payment"
	"nft-ticketing/internal/redemption"
	redemption_redis "nft-ticketing/internal/redemption/redis"
	"nft-ticketing/internal/tickets"
	tickets_db "nft-ticketing/internal/tickets/db"
	"nft-ticketing/internal/tickets/ticket_api"
)

func connectDatabase(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func buildPaymentGateway(cfg config.PaymentConfig, log *logger.Logger) payment.Gateway {
	if cfg.Mode == "stripe" {
		gw, err := payment.NewStripeGateway(cfg.StripeSecretKey, log)
		if err != nil {
			log.Fatal("PAYMENT", fmt.Sprintf("Failed to initialize Stripe gateway: %v", err))
		}
		return gw
	}
	log.Warn("PAYMENT", "Using simulated payment gateway")
	return payment.NewSimulatedGateway(log)
}

func buildMetadataStore(cfg config.MetadataConfig, log *logger.Logger) metadata.Store {
	if cfg.Mode == "pinata" {
		return metadata.NewPinataStore(cfg.PinataURL, cfg.PinataJWT, cfg.GatewayURL)
	}
	log.Warn("METADATA", "Using mock metadata store")
	return &metadata.MockStore{GatewayURL: cfg.GatewayURL}
}

func main() {
	_ = godotenv.Load()

	log := logger.NewLogger()
	defer log.Close()

	cfg := config.Load()

	bunDB := connectDatabase(cfg.Database, log)
	defer bunDB.Close()

	if os.Getenv("AUTO_MIGRATE") != "false" {
		if err := runMigrations(bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	log.Info("REDIS", "Redis connection successful")

	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		topics := []string{
			cfg.Kafka.Topics.TicketMinted,
			cfg.Kafka.Topics.TicketListed,
			cfg.Kafka.Topics.TicketSold,
			cfg.Kafka.Topics.TicketRedeemed,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation failed: %v", err))
		}
	}
	producer := kafka.NewProducer(cfg.Kafka, log)
	defer producer.Close()

	ledgerClient := ledger.NewClient(cfg.Ledger.GatewayURL, cfg.Ledger.ContractAddress, log)
	gateway := buildPaymentGateway(cfg.Payment, log)
	metaStore := buildMetadataStore(cfg.Metadata, log)

	eventDB := &events_db.DB{Bun: bunDB}
	ticketDB := &tickets_db.DB{Bun: bunDB}

	eventService := events.NewEventService(eventDB)
	ticketService := tickets.NewTicketService(ticketDB)
	issuanceService := issuance.NewService(eventDB, ticketDB, gateway, metaStore, ledgerClient, producer, log)
	marketService := marketplace.NewService(ticketDB, eventDB, ledgerClient, marketplace.NewBunTreasury(bunDB), producer, log)
	redemptionService := redemption.NewService(
		ticketDB,
		ledgerClient,
		redemption_redis.NewRedis(rdb, cfg.Redis.RedeemLockTTL),
		producer,
		log,
	)

	eventHandler := event_api.NewHandler(eventService)
	ticketHandler := &ticket_api.Handler{
		TicketService: ticketService,
		Issuance:      issuanceService,
		Redemption:    redemptionService,
		Ledger:        ledgerClient,
		Logger:        log,
	}
	marketHandler := &market_api.Handler{
		Market:        marketService,
		TicketService: ticketService,
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.CreateEvent)
			r.Get("/", eventHandler.ListEvents)
			r.Get("/{eventID}", eventHandler.GetEvent)
			r.Put("/{eventID}", eventHandler.UpdateEvent)
			r.Delete("/{eventID}", eventHandler.DeleteEvent)
			r.Get("/{eventID}/tickets", ticketHandler.GetEventTickets)
		})
		r.Route("/tickets", func(r chi.Router) {
			r.Post("/buy", ticketHandler.BuyTicket)
			r.Post("/verify", ticketHandler.VerifyTicket)
			r.Get("/owner/{address}", ticketHandler.GetTicketsByOwner)
			r.Get("/{tokenID}", ticketHandler.GetTicketDetails)
			r.Get("/{tokenID}/qr", ticketHandler.GetTicketQR)
		})
		r.Route("/market", func(r chi.Router) {
			r.Post("/list", marketHandler.ListTicket)
			r.Post("/unlist", marketHandler.UnlistTicket)
			r.Post("/purchase", marketHandler.PurchaseTicket)
			r.Get("/events/{eventID}/listings", marketHandler.GetListings)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("Server error: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SERVER", "Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("SERVER", fmt.Sprintf("Graceful shutdown failed: %v", err))
	}
	log.Info("SERVER", "Server stopped")
}
