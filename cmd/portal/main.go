package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/example/employee-portal/internal/application"
	"github.com/example/employee-portal/internal/config"
	httptransport "github.com/example/employee-portal/internal/http"
	"github.com/example/employee-portal/internal/notify"
	"github.com/example/employee-portal/internal/persistence/sqlite"
	"github.com/example/employee-portal/internal/policy"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Missing .env is fine; the environment may be set by the runtime.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("failed to create upload directory", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	userRepo := sqlite.NewUserRepository(storage)
	roomRepo := sqlite.NewRoomRepository(storage)
	bookingRepo := sqlite.NewBookingRepository(storage)
	taskRepo := sqlite.NewTaskRepository(storage)
	issueRepo := sqlite.NewIssueRepository(storage)
	calendarRepo := sqlite.NewCalendarRepository(storage)
	announcementRepo := sqlite.NewAnnouncementRepository(storage)
	pollRepo := sqlite.NewPollRepository(storage)

	smtp := notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	var notifier application.Notifier
	if smtp.Configured() {
		notifier = notify.NewMailer(smtp, logger)
	} else {
		logger.Warn("smtp not configured, notifications will be logged only")
		notifier = notify.LogNotifier{Logger: logger}
	}

	if err := application.EnsureSuperAdmin(ctx, userRepo, cfg.SeedAdminEmail, cfg.SeedAdminPassword, idGenerator, now, logger); err != nil {
		logger.Error("failed to seed superadmin account", "error", err)
		os.Exit(1)
	}

	authService := application.NewAuthService(userRepo, notifier, cfg.JWTSecret, idGenerator, now, logger)
	userService := application.NewUserService(userRepo, notifier, now, logger)
	roomService := application.NewRoomService(roomRepo, idGenerator, now, logger)
	bookingService := application.NewBookingService(bookingRepo, roomRepo, userRepo, notifier, idGenerator, now, logger)
	taskService := application.NewTaskService(taskRepo, userRepo, notifier, idGenerator, now, logger)
	issueService := application.NewIssueService(issueRepo, userRepo, notifier, idGenerator, now, logger)
	calendarService := application.NewCalendarService(calendarRepo, idGenerator, now, logger)
	announcementService := application.NewAnnouncementService(announcementRepo, userRepo, idGenerator, now, logger)
	pollService := application.NewPollService(pollRepo, idGenerator, now, logger)
	analyticsService := application.NewAnalyticsService(bookingRepo, taskRepo, issueRepo, userRepo, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, cfg.UploadDir, logger),
		Users:         httptransport.NewUserHandler(userService, logger),
		Rooms:         httptransport.NewRoomHandler(roomService, logger),
		Bookings:      httptransport.NewBookingHandler(bookingService, logger),
		Tasks:         httptransport.NewTaskHandler(taskService, logger),
		Issues:        httptransport.NewIssueHandler(issueService, logger),
		Calendar:      httptransport.NewCalendarHandler(calendarService, logger),
		Announcements: httptransport.NewAnnouncementHandler(announcementService, logger),
		Polls:         httptransport.NewPollHandler(pollService, logger),
		Analytics:     httptransport.NewAnalyticsHandler(analyticsService, logger),

		RequireAuth:  httptransport.RequireAuth(authService, logger),
		RequireAdmin: httptransport.RequireRole(logger, policy.RoleAdmin, policy.RoleSuperAdmin),
		RequireSuper: httptransport.RequireRole(logger, policy.RoleSuperAdmin),
		RateLimit:    httptransport.RateLimit(rate.Every(time.Minute/10), 10, logger),
		Captcha:      httptransport.VerifyCaptcha(httptransport.NopCaptchaVerifier{}, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("portal API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
