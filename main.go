package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/config"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/db"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/events"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/gelf"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/handler"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/logger"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/router"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

const serviceName = "dms-templates"

// backends holds whatever the configured store needed to open.
type backends struct {
	templates  repository.TemplateStore
	users      repository.UserRepo
	agreements repository.AgreementStore
	redis      *redis.Client
	stops      []func()
	closers    []func() error
}

func (b *backends) Close() {
	for _, stop := range b.stops {
		stop()
	}
	for _, c := range b.closers {
		c()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var sinks []zapcore.WriteSyncer
	var gelfErr error
	if cfg.GELFAddr != "" {
		w, err := gelf.New(cfg.GELFAddr, serviceName)
		if err != nil {
			gelfErr = err
		} else {
			defer w.Close()
			sinks = append(sinks, w)
		}
	}
	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, serviceName, sinks...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if gelfErr != nil {
		log.Warn("GELF init failed", zap.String("addr", cfg.GELFAddr), zap.Error(gelfErr))
	}

	b, err := openBackends(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer b.Close()

	var pub events.Publisher = events.NopPublisher{}
	if cfg.EventsStream != "" && b.redis != nil {
		pub = events.NewRedisPublisher(b.redis, cfg.EventsStream)
		log.Info("publishing template events", zap.String("stream", cfg.EventsStream))
	}

	// Uploaded documents and file:// sources share one root.
	inspector := document.NewContentInspector()
	fetcher := document.SourceFetcher{
		HTTP: document.NewHTTPFetcher(document.HTTPFetcherConfig{
			Timeout:      cfg.DocumentTimeout,
			AllowedHosts: cfg.DocumentHosts,
			MaxBytes:     cfg.DocumentMaxBytes,
		}, log),
		Files: document.FileFetcher{Root: cfg.DocumentRoot},
	}
	loader := document.NewLoader(fetcher, inspector, log)

	// Services
	templateSvc := service.NewTemplateService(b.templates, loader, pub, log)
	templateSvc.SeedMergeFields(cfg.CustomMergeFields)
	agreementSvc := service.NewAgreementService(b.agreements, templateSvc, log)
	authSvc := service.NewAuthService(b.users, cfg.JWTSecret, log)
	docSvc := service.NewDocumentService(cfg.DocumentRoot, inspector, log)
	searchSvc := service.NewSearchService(templateSvc)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.SeedAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPass, cfg.AdminTenant); err != nil {
		log.Warn("failed to seed admin", zap.Error(err))
	}
	cancel()

	r := router.New(cfg.JWTSecret, router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Templates:   handler.NewTemplateHandler(templateSvc),
		Fields:      handler.NewFieldHandler(templateSvc),
		Agreements:  handler.NewAgreementHandler(agreementSvc),
		MergeFields: handler.NewMergeFieldHandler(templateSvc),
		Documents:   handler.NewDocumentHandler(docSvc),
		Search:      handler.NewSearchHandler(searchSvc),
		Dashboard:   handler.NewDashboardHandler(templateSvc, agreementSvc),
		Admin:       handler.NewAdminHandler(b.templates),
	}, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openBackends(cfg *config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}

	// Redis backs the event stream even when templates live elsewhere.
	if cfg.Store == config.StoreRedis || cfg.EventsStream != "" {
		client, err := db.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		b.redis = client
		b.closers = append(b.closers, client.Close)
		b.stops = append(b.stops, db.Keepalive("redis", db.RedisPinger{Client: client}, log))
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	}

	switch cfg.Store {
	case config.StoreMemory:
		b.templates = repository.NewMemoryTemplateStore()
		b.users = repository.NewMemoryUserRepo()
	case config.StoreJSON:
		store, err := repository.NewJSONTemplateStore(cfg.DataDir, log)
		if err != nil {
			return nil, err
		}
		b.templates = store
		b.users = repository.NewMemoryUserRepo()
	case config.StoreRedis:
		b.templates = repository.NewRedisTemplateStore(b.redis, log)
		b.users = repository.NewRedisUserRepo(b.redis)
	case config.StorePostgres:
		conn, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, conn.Close)
		b.stops = append(b.stops, db.Keepalive("postgres", conn, log))
		store := repository.NewPostgresTemplateStore(conn, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		b.templates = store
		b.users = repository.NewMemoryUserRepo()
		log.Info("connected to postgres")
	}

	if b.redis != nil {
		b.agreements = repository.NewRedisAgreementStore(b.redis)
		if cfg.Store != config.StoreRedis {
			b.users = repository.NewRedisUserRepo(b.redis)
		}
	} else {
		b.agreements = repository.NewMemoryAgreementStore()
	}
	return b, nil
}
