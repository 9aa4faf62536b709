package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"matplan/internal/api"
	"matplan/internal/auth"
	"matplan/internal/config"
	"matplan/internal/database"
	"matplan/internal/household"
	"matplan/internal/live"
	"matplan/internal/llm"
	"matplan/internal/parse"
	"matplan/internal/queue"
	"matplan/internal/recipe"
	"matplan/internal/redisconn"
	"matplan/internal/shopping"
	"matplan/internal/tag"
	"matplan/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("invalid configuration", "error", err)
	}

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("server exited with error", "error", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	// storage
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Infow("connected to database", "path", cfg.DatabasePath)

	// redis: job queue + live-update channel
	redisClient, err := redisconn.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	logger.Info("connected to Redis")

	broker := queue.NewRedisBroker(redisClient, logger)
	events := live.NewPublisher(redisClient, logger)

	// repos
	tagRepo := tag.NewRepository(db.SQL)
	recipeRepo := recipe.NewRepository(db.SQL, tagRepo)
	householdRepo := household.NewRepository(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)

	shoppingService := shopping.NewService(shoppingRepo, broker, events, logger)

	// llm-backed recipe parsing; disabled when no key is configured
	var parser *parse.Parser
	var textGen llm.TextGenerator
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			textGen, err = llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
			if err != nil {
				return err
			}
		}
	case "groq":
		if cfg.GroqAPIKey != "" {
			textGen = llm.NewGroqClient(cfg.GroqAPIKey)
		}
	}
	if textGen != nil {
		parser = parse.NewParser(textGen)
		logger.Infow("recipe parsing enabled", "provider", cfg.LLMProvider)
	} else {
		logger.Warn("no LLM API key configured, recipe parsing is disabled")
	}

	// generation worker
	generator := worker.NewGenerator(shoppingRepo, recipeRepo, householdRepo, broker, events, logger)
	if err := generator.Start(); err != nil {
		return err
	}

	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.SessionTTL)

	server := api.NewServer(logger, db, authenticator, recipeRepo, tagRepo, householdRepo,
		shoppingService, parser, events)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Mount(),
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		logger.Infow("signal caught", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		generator.Stop()

		if closer, ok := textGen.(llm.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Errorw("error closing LLM client", "error", err)
			}
		}

		if err := broker.Close(); err != nil {
			logger.Errorw("error closing queue broker", "error", err)
		}

		shutdown <- srv.Shutdown(ctx)
	}()

	logger.Infow("server has started", "addr", cfg.Addr, "env", cfg.Env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdown; err != nil {
		return err
	}

	logger.Infow("server has stopped", "addr", cfg.Addr, "env", cfg.Env)

	return nil
}
