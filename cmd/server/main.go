package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estategraph/server/config"
	"estategraph/server/internal/api"
	"estategraph/server/internal/catalog"
	"estategraph/server/internal/graphql"
	"estategraph/server/internal/insight"
	"estategraph/server/internal/store"
	"estategraph/server/internal/store/backend"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the entity store
	s, err := store.ConnectWithRetry(ctx, backend.Dialer(cfg, logger), cfg.Store.MaxRetries, cfg.RetryDelay(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to entity store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Close(closeCtx); err != nil {
			logger.WithError(err).Error("Failed to close entity store")
		}
	}()

	engine := insight.NewEngine(s, logger, insight.WithTaxRate(cfg.TaxRate))
	svc := catalog.NewService(s, logger)
	executor := graphql.NewExecutor(graphql.NewResolver(s, engine, svc), logger,
		graphql.WithMaxDepth(cfg.GraphQL.MaxDepth),
		graphql.WithParallelism(cfg.GraphQL.Parallelism),
	)

	handler := api.NewHandler(executor, s, logger,
		api.WithPath(cfg.Server.GraphQLPath),
		api.WithPlayground(cfg.Server.EnablePlayground),
		api.WithTimeout(cfg.RequestTimeout()),
	)

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":       cfg.Addr(),
			"path":       cfg.Server.GraphQLPath,
			"playground": cfg.Server.EnablePlayground,
			"driver":     cfg.Store.Driver,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.WithError(err).Error("Server failed")
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
