package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-archive/internal/config"
	"github.com/iliyamo/invoice-archive/internal/database"
	"github.com/iliyamo/invoice-archive/internal/extractor"
	"github.com/iliyamo/invoice-archive/internal/handler"
	"github.com/iliyamo/invoice-archive/internal/identity"
	"github.com/iliyamo/invoice-archive/internal/queue"
	"github.com/iliyamo/invoice-archive/internal/repository"
	"github.com/iliyamo/invoice-archive/internal/router"
	"github.com/iliyamo/invoice-archive/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate database: %v", err)
	}
	cancel()

	images, err := storage.NewS3Store(context.Background(), cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSBucket)
	if err != nil {
		log.Fatalf("init object storage: %v", err)
	}

	users := repository.NewUserRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	pipeline := extractor.New(extractor.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel))
	verifier := identity.NewGoogleVerifier(cfg.GoogleClientID)

	rdb := config.NewRedisClient() // nil disables the response cache
	cacheCfg := config.LoadCacheConfig()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, verifier))
	router.RegisterInvoices(e,
		handler.NewInvoiceHandler(invoices, images),
		handler.NewUploadHandler(images),
		handler.NewExtractHandler(invoices, pipeline),
		cfg, cacheCfg, rdb)

	// Audit-log consumer for invoice lifecycle events; reconnects on its own.
	go func() {
		if err := queue.StartInvoiceConsumer(); err != nil {
			log.Printf("invoice consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
