package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitechat/sitechat/config"
	"sitechat/sitechat/controllers"
	"sitechat/sitechat/middlewares"
	"sitechat/sitechat/routes"
	"sitechat/sitechat/services/answer"
	"sitechat/sitechat/services/llm"
	"sitechat/sitechat/services/scraper"
	"sitechat/sitechat/sessions"
	"sitechat/sitechat/sources/psql"
	"sitechat/sitechat/sources/psql/dao"
	"sitechat/sitechat/sources/storage"
	"sitechat/sitechat/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()
	if err != nil {
		logging.ErrorLogger.Error("config load error", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store sessions.Store = sessions.NewMemoryStore()
	if cfg.DatabaseEnabled() {
		db, err := psql.NewDatabase(ctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("database connection error", zap.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		store = dao.NewSessionDAO(db.DB)
	} else {
		logging.AppLogger.Warn("DB_HOST not set, sessions are kept in memory")
	}

	var opts []scraper.Option
	if cfg.CacheEnabled() {
		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		opts = append(opts, scraper.WithCache(minioClient))
	}

	loader, closeLoader, err := newLoader(cfg)
	if err != nil {
		logging.ErrorLogger.Error("page loader error", zap.String("mode", cfg.FetchMode), zap.Error(err))
		os.Exit(1)
	}
	defer closeLoader()

	fetcher := scraper.NewScraper(loader, cfg.ChunkSize, cfg.ChunkOverlap, opts...)
	generator := answer.NewGenerator(llm.NewFactory(llm.Models{
		OpenAI:             cfg.OpenAIModel,
		Anthropic:          cfg.AnthropicModel,
		AnthropicMaxTokens: cfg.AnthropicMaxTokens,
	}))
	chatCtrl := controllers.NewChatController(store, fetcher, generator)
	healthCtrl := controllers.NewHealthController(store)

	handler := routes.NewRouter(chatCtrl, healthCtrl, routes.Options{
		SessionSecret:  middlewares.SessionSecret(cfg.SessionSecret),
		SessionTTL:     cfg.SessionTTL,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
		return
	}
	logging.AppLogger.Info("server shutdown complete")
}

func newLoader(cfg config.Config) (scraper.Loader, func(), error) {
	if cfg.FetchMode == config.FetchModeBrowser {
		bl, err := scraper.NewBrowserLoader(cfg.FetchTimeout)
		if err != nil {
			return nil, nil, err
		}
		return bl, bl.Close, nil
	}
	return scraper.NewHTTPLoader(cfg.FetchTimeout), func() {}, nil
}
