package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"avodah/docs"
	"avodah/internal/auth"
	"avodah/internal/cache"
	"avodah/internal/config"
	"avodah/internal/db"
	"avodah/internal/handler"
	"avodah/internal/mailer"
	"avodah/internal/metrics"
	"avodah/internal/repository"
	"avodah/internal/router"
	"avodah/internal/service"
	"avodah/internal/storage"
	"avodah/internal/verse"
)

// @title Avodah API
// @version 1.0
// @description Church community API: session authentication, role hierarchy, posts and profile pictures.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
func main() {
	e := echo.New()
	e.HideBanner = true

	cfg, err := config.Load()
	if err != nil {
		e.Logger.Fatalf("config: %v", err)
	}
	if cfg.Production() {
		e.Logger.SetLevel(log.INFO)
	} else {
		e.Logger.SetLevel(log.DEBUG)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		e.Logger.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		e.Logger.Fatalf("auto-migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		e.Logger.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		e.Logger.Warnf("redis unavailable, continuing without cache: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB, cfg.StoreTimeout)
	postRepo := repository.NewPostRepository(gormDB, cfg.StoreTimeout)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokenStore := auth.NewTokenStore(cacheClient)

	pictures := pictureStore(e, cfg)
	mail := reportMailer(e, cfg, httpClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, hasher, tokenStore, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, pictures)
	postService := service.NewPostService(postRepo, cacheClient)
	reportService := service.NewReportService(mail, cfg.ReportFrom, cfg.ReportTo)

	// Initialize handlers
	cookies := handler.CookiePolicy{Secure: cfg.Production()}
	handlers := router.Handlers{
		Auth:   handler.NewAuthHandler(authService, cookies),
		User:   handler.NewUserHandler(userService, authService),
		Post:   handler.NewPostHandler(postService),
		Extras: handler.NewExtrasHandler(verse.NewClient(httpClient, cfg.VerseAPIURL), reportService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"mysql": handler.PingFunc(sqlDB.PingContext),
			"redis": cacheClient,
		}, 2*time.Second),
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	router.Register(e, cfg, jwtService, metrics.New(), handlers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		e.Logger.Infof("listening on %s (swagger at /swagger/index.html)", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("shutdown: %v", err)
	}
}

func pictureStore(e *echo.Echo, cfg *config.Config) storage.PictureStore {
	if cfg.S3Bucket == "" {
		return storage.InlineStore{}
	}
	store, err := storage.NewS3Store(context.Background(), storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		e.Logger.Fatalf("s3 init: %v", err)
	}
	return store
}

func reportMailer(e *echo.Echo, cfg *config.Config, httpClient *http.Client) mailer.Mailer {
	if cfg.MailtrapToken == "" {
		e.Logger.Warn("MAILTRAP_TOKEN not set, error reports will only be logged")
		return mailer.NewLogMailer(e.Logger)
	}
	return mailer.NewMailtrap(httpClient, cfg.MailtrapAPIURL, cfg.MailtrapToken)
}
