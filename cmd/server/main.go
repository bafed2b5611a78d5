package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iscbashan/contact/internal/config"
	"github.com/iscbashan/contact/internal/handler"
	"github.com/iscbashan/contact/internal/logging"
	"github.com/iscbashan/contact/internal/metrics"
	"github.com/iscbashan/contact/internal/repository"
	"github.com/iscbashan/contact/internal/service"
	"github.com/iscbashan/contact/internal/storage"
	"github.com/iscbashan/contact/pkg/mailer"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	contactRepo := repository.NewPgContactRepository(pool)

	// 画像ストレージ（identity バリアントのみ使用）
	var uploader *service.ImageUploader
	var uploadsDir string
	if cfg.Variant.RequiresImage() {
		var store storage.Storage
		switch cfg.StorageDriver {
		case config.StorageDriverLocal:
			local := storage.NewLocalStorage(cfg.LocalStorageDir, "/uploads")
			uploadsDir = local.BaseDir()
			store = local
		default:
			supabase := storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.StorageBucket)
			if !supabase.Configured() {
				slog.Warn("SUPABASE_URL / SUPABASE_ANON_KEY not set, identity image uploads will fail")
			}
			store = supabase
		}
		uploader = service.NewImageUploader(store)
	}

	// メール通知（未設定の場合は送信をスキップ）
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
	})
	if !cfg.EmailConfigured() {
		slog.Warn("EMAIL_USER / EMAIL_PASS not set, notifications are disabled")
	}
	notifier := service.NewEmailNotifier(sender, service.NotifierConfig{
		Brand:       cfg.NotifyBrand,
		FromAddress: cfg.EmailUser,
		To:          cfg.NotifyTo,
		Bcc:         cfg.NotifyBCC,
	}, m)

	contactService := service.NewContactService(contactRepo, uploader, notifier, m, service.ContactServiceConfig{
		Kind:          cfg.Variant,
		UploadTimeout: cfg.UploadTimeout,
		DBTimeout:     cfg.DBTimeout,
		EmailTimeout:  cfg.EmailTimeout,
	})

	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health:         handler.New(pool),
		Contact:        handler.NewContactHandler(contactService),
		Metrics:        promhttp.Handler(),
		UploadsDir:     uploadsDir,
	})

	// Upload + DB + email can take up to the sum of the per-stage timeouts.
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.UploadTimeout + cfg.DBTimeout + cfg.EmailTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"variant", cfg.Variant.String(),
			"storage_driver", cfg.StorageDriver,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
