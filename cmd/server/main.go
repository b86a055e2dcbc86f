package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "optics-backoffice/internal/adapters/web"
	"optics-backoffice/internal/app"
	"optics-backoffice/internal/cache"
	"optics-backoffice/internal/core"
	"optics-backoffice/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	var reportCache core.Cache = cache.NewNoop()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc, err := cache.NewRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rc.Close()
		reportCache = rc
		log.Printf("report cache: redis at %s", addr)
	}

	userService := core.NewUserService(pool)
	partyService := core.NewPartyService(pool)
	balanceService := core.NewBalanceService(pool, partyService)
	lensService := core.NewLensService(pool)
	productService := core.NewProductService(pool)
	invoiceService := core.NewInvoiceService(pool, lensService, productService)
	purchaseService := core.NewPurchaseService(pool, lensService)
	transactionService := core.NewTransactionService(pool)
	reorderService := core.NewReorderService(pool, reportCache)

	svc := app.NewAppService(
		userService, partyService, balanceService,
		lensService, productService,
		invoiceService, purchaseService, transactionService, reorderService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
