package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/sensorsink/internal/adapters/http/api"
	"github.com/okian/sensorsink/internal/adapters/http/swagger"
	"github.com/okian/sensorsink/internal/adapters/repository"
	app "github.com/okian/sensorsink/internal/app"
	"github.com/okian/sensorsink/internal/config"
	"github.com/okian/sensorsink/pkg/logger"
)

// HTTP server timeout constants. Read and write timeouts are generous since
// a session upload can be tens of megabytes from a slow watch link.
const (
	readTimeout       = 2 * time.Minute
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	bannerWidth       = 60
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if cfg.LogFormat != logger.FormatText {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.NewFileStore(cfg.UploadsDir)
	if err != nil {
		log.Error(ctx, "failed to resolve uploads dir", logger.Error(err))
		os.Exit(1)
	}
	svc := app.New(store, app.WithLogger(logger.Named("upload")))
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start upload service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	os.Stdout.WriteString(banner(cfg, store.Dir()))

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newHandler builds the routed, middleware-wrapped HTTP handler. The health
// endpoint reports uploads_dir as configured, not as resolved.
func newHandler(ctx context.Context, cfg *config.Config, svc api.Uploader) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, api.Info{
		Service:    cfg.ServiceName,
		Version:    cfg.Version,
		UploadsDir: cfg.UploadsDir,
	}, cfg.MaxBodyBytes)
	apiServer.Register(ctx, mux)

	return api.Handler(mux, cfg.Origins())
}

// banner renders the informational startup text.
func banner(cfg *config.Config, uploadsDir string) string {
	rule := strings.Repeat("=", bannerWidth)
	base := "http://" + cfg.Addr

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(cfg.ServiceName + " " + cfg.Version + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("Server listening on " + base + "\n")
	b.WriteString("Upload endpoint: " + base + "/upload\n")
	b.WriteString("Health check: " + base + "/health\n")
	b.WriteString("Max upload size: " + humanize.IBytes(uint64(cfg.MaxBodyBytes)) + "\n")
	b.WriteString("Uploads will be saved to: " + uploadsDir + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("Press Ctrl+C to stop the server\n\n")
	return b.String()
}
