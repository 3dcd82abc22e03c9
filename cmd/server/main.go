package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/neopaysim/backend/internal/config"
	"github.com/neopaysim/backend/internal/database"
	"github.com/neopaysim/backend/internal/handlers"
	mW "github.com/neopaysim/backend/internal/middleware"
	"github.com/neopaysim/backend/internal/services"
	"github.com/neopaysim/backend/internal/store"
)

func main() {
	config.Load()

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	st := store.New(db)
	ids := services.NewRandomIDSource()

	if viper.GetBool("seed.demo") {
		pinHash, err := services.HashPIN(viper.GetString("seed.demo_pin"))
		if err != nil {
			log.Fatalf("Failed to hash demo PIN: %v", err)
		}
		if err := database.Seed(context.Background(), st, pinHash); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	ledgerService := services.NewLedgerService(st, ids)
	transactionService := services.NewTransactionService(st, ledgerService, ids)
	authService := services.NewAuthService(st, ids)
	notificationService := services.NewNotificationService(st)
	billService := services.NewBillService(st, ledgerService, ids)
	qrHandler := handlers.NewQRHandler(st)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/qr/parse", qrHandler.ParseQR)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetUserAccount)

			r.Get("/transactions", transactionService.ListTransactions)
			r.Post("/transactions", transactionService.CreateTransaction)
			r.Get("/transactions/{txId}", transactionService.GetTransaction)

			r.Get("/accounts/balance-enquiry", transactionService.AccountBalanceEnquiry)
			r.Get("/accounts/statement", transactionService.AccountStatement)

			r.Get("/notifications", notificationService.ListNotifications)
			r.Put("/notifications/{notificationId}/read", notificationService.MarkRead)

			r.Get("/bills", billService.ListBills)
			r.Post("/bills/{billId}/pay", billService.PayBill)

			r.Post("/qr/generate", qrHandler.GenerateQR)
		})
	})

	port := viper.GetString("server.port")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  viper.GetDuration("server.read_timeout"),
		WriteTimeout: viper.GetDuration("server.write_timeout"),
		IdleTimeout:  viper.GetDuration("server.idle_timeout"),
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
