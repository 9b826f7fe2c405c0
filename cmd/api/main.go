package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smallnumbers0/create-activity/internal/agent"
	"github.com/smallnumbers0/create-activity/internal/api"
	"github.com/smallnumbers0/create-activity/internal/auth"
	"github.com/smallnumbers0/create-activity/internal/completion"
	"github.com/smallnumbers0/create-activity/internal/config"
	"github.com/smallnumbers0/create-activity/internal/events"
	"github.com/smallnumbers0/create-activity/internal/knowledge"
	"github.com/smallnumbers0/create-activity/internal/parser"
	"github.com/smallnumbers0/create-activity/internal/session"
	"github.com/smallnumbers0/create-activity/internal/strava"
	httptransport "github.com/smallnumbers0/create-activity/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := log.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, cleanup, err := buildSessions(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to set up session storage: %v", err)
	}
	defer cleanup()

	catalog := knowledge.NewService(logger)
	defer catalog.Close()

	var completions parser.CompletionClient
	var generator agent.Generator = completion.FallbackGenerator{}
	if cfg.OpenAIAPIKey != "" {
		client, err := completion.NewFromAPIKey(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout, logger)
		if err != nil {
			log.Fatalf("failed to set up completion client: %v", err)
		}
		completions = client
		generator = client
	} else {
		logger.Printf("OPENAI_API_KEY not set, prompt parsing falls back to pattern matching")
	}

	prompts := parser.New(completions, catalog, logger)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	handler := api.NewHandler(api.Dependencies{
		Sessions:  sessions,
		Knowledge: catalog,
		Parser:    prompts,
		Generator: generator,
		Publisher: publisher,
		Strava: strava.Config{
			ClientID:     cfg.StravaClientID,
			ClientSecret: cfg.StravaClientSecret,
			RedirectURI:  cfg.StravaRedirectURI,
			Logger:       logger,
		},
		Logger: logger,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Basic request logger
	requestLogger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		func(r *http.Request) bool {
			return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
		},
	)

	// Write timeout covers model calls, which can take tens of seconds.
	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(requestLogger(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("activity-assistant listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// buildSessions selects Postgres-backed session storage when configured,
// in-memory otherwise.
func buildSessions(ctx context.Context, cfg config.Config) (session.Repository, func(), error) {
	if cfg.PostgresURL == "" {
		return session.NewMemoryRepository(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	if _, err := pool.Exec(ctx, session.Schema); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return session.NewPostgresRepository(pool), pool.Close, nil
}
