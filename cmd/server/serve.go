package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/halchash/storefront/internal/config"
	"github.com/halchash/storefront/internal/database"
	"github.com/halchash/storefront/internal/handler"
	"github.com/halchash/storefront/internal/middleware"
	"github.com/halchash/storefront/internal/queue"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/router"
	"github.com/halchash/storefront/internal/service"
)

// shutdownTimeout bounds the drain of in-flight requests on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg := config.Load()
	log := setupLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blocked := repository.NewBlockedUserRepo(db)
	if on, err := blocked.Detect(ctx); err != nil {
		log.Warn("block list detection failed", "error", err)
	} else if !on {
		log.Warn("blocked_users table not found; block list disabled until migrations run")
	}

	// ---- Repositories and workflows ----
	store := service.NewSQLStore(db, blocked)
	categories := repository.NewCategoryRepo(db)
	wishlist := repository.NewWishlistRepo(db)
	admins := repository.NewAdminRepo(db)
	analytics := repository.NewAnalyticsRepo(db)

	opts := service.OrderOptions{
		DefaultShipping: cfg.DefaultShipping,
		BcryptCost:      cfg.BcryptCost,
		Logger:          log,
	}
	if cfg.EventsEnabled {
		opts.Events = queue.NewPublisher(cfg.RabbitURL)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.OrderLogDir)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("order consumer stopped", "error", err)
			}
		}()
	}
	orders := service.NewOrderService(store, opts)
	reviews := service.NewReviewService(store, log)
	hero := service.NewHeroService(store, cfg.HeroMax, log)

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	rl := config.LoadRateLimitConfig()
	e.Use(middleware.NewTokenBucket(rl, rdb))
	strict := middleware.NewTokenBucket(rl.Scoped("strict", rl.Strict), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, store.Users), cfg.JWTSecret, strict)
	router.RegisterPublic(e,
		handler.NewCatalogHandler(categories, store.Products, store.Reviews, hero.Max()),
		handler.NewOrderHandler(orders, store.Orders, store.Reviews),
		cfg.JWTSecret, strict)
	router.RegisterCustomer(e,
		handler.NewOrderHandler(orders, store.Orders, store.Reviews),
		handler.NewReviewHandler(reviews),
		handler.NewWishlistHandler(wishlist),
		cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminAuthHandler(cfg, admins),
		handler.NewAdminCatalogHandler(categories, store.Products),
		cfg.JWTSecret, strict)
	router.RegisterAdminOrders(e,
		handler.NewAdminHandler(store.Orders, store.Users, blocked, store.Products, hero, analytics),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "version", version)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
