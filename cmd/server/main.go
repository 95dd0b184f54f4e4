package main // Entry point of the booking API

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/payment"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logger := newLogger("booking-api", cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		logger.Info("schema migrated")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable: rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	vault, err := payment.NewVault(cfg.CardKey)
	if err != nil {
		logger.Fatalf("card vault: %v", err)
	}
	mailCfg := config.LoadMailConfig()

	// Repositories
	prices := repository.NewTicketPriceRepo(db)
	promos := repository.NewPromotionRepo(db)
	showSeats := repository.NewShowSeatRepo(db)
	shows := repository.NewShowRepo(db)
	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	cards := repository.NewCardRepo(db, vault)

	// Booking core
	pricer := service.NewCartPricer(prices, promos)
	ledger := service.NewPromotionLedger(promos)
	seats := service.NewSeatAllocator(showSeats)
	coordinator := service.NewBookingCoordinator(service.BookingDeps{
		DB:        db,
		Pricer:    pricer,
		Ledger:    ledger,
		Seats:     seats,
		Cards:     cards,
		Shows:     shows,
		Users:     users,
		Bookings:  bookings,
		Processor: newProcessor(config.LoadPaymentConfig(), logger),
		Notifier:  newNotifier(cfg, mailCfg, logger),
		Logger:    logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(accessLog(logger))

	router.RegisterRoutes(e, db)
	cart := handler.NewCartHandler(pricer, ledger)
	cacheCfg := config.LoadCacheConfig()
	router.RegisterPublic(e, handler.NewCatalogHandler(prices, shows, seats), cart,
		middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterCustomer(e, cart, handler.NewBookingHandler(coordinator), cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterAdmin(e, handler.NewPromotionHandler(promos), handler.NewTicketPriceHandler(prices), cfg.JWTSecret,
		middleware.PurgeCache(cacheCfg, rdb, router.TicketTypesPath))

	if cfg.BlastEnabled {
		blast := service.NewPromotionBlast(promos, users, mustSender(mailCfg, logger), mailCfg.BlastEvery, logger)
		if err := blast.Start(); err != nil {
			logger.Fatalf("promotion blast: %v", err)
		}
		defer func() { _ = blast.Stop() }()
		logger.Infof("promotion blast every %s", mailCfg.BlastEvery)
	}

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	logger.Info("stopped")
}

func accessLog(logger *log.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			logger.Infoj(log.JSON{
				"msg":        "request",
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			return nil
		},
	})
}
