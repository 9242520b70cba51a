package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-miniapp-service/internal/app"
	"trivia-miniapp-service/internal/config"
	pgbank "trivia-miniapp-service/internal/infra/postgres"
	redisinfra "trivia-miniapp-service/internal/infra/redis"
	"trivia-miniapp-service/internal/infra/sqlite"
	"trivia-miniapp-service/internal/question"
	transport "trivia-miniapp-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Schema setup happens here, once, never from request handlers.
	db, err := openSQLite(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := runSQLiteMigrations(ctx, db); err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runPostgresMigrations(ctx, cfg); err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	staticSource, err := question.NewStaticSource()
	if err != nil {
		return err
	}

	cacheTTL := config.TTLDuration(cfg.Questions.CacheTTL, 10*time.Minute)
	var source question.Source
	generative := false
	switch {
	case cfg.Gemini.APIKey != "":
		source, err = question.NewGeminiSource(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
			config.TTLDuration(cfg.Gemini.Timeout, 15*time.Second))
		if err != nil {
			return err
		}
		generative = true
		log.Printf("question source: gemini (%s)", cfg.Gemini.Model)
	case pool != nil:
		source = question.NewCachedSource(pgbank.NewBankSource(pool), cacheTTL)
		log.Printf("question source: postgres bank")
	default:
		source = question.NewCachedSource(staticSource, cacheTTL)
		log.Printf("question source: embedded bank")
	}

	service := app.NewQuizService(
		sqlite.NewPlayerRepo(db),
		sqlite.NewAnswerLog(db),
		source,
		app.Config{
			BatchSize:       cfg.Questions.BatchSize,
			LeaderboardSize: cfg.Leaderboard.Size,
			SourceDedups:    generative,
		},
	)

	var lb app.LeaderboardProvider = service
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		lb = redisinfra.NewLeaderboardCache(client, service,
			config.TTLDuration(cfg.Redis.TTL, 30*time.Second))
		log.Printf("leaderboard cache: redis at %s", cfg.Redis.Addr)
	}

	webhook, err := transport.NewWebhookHandler(cfg.Telegram.Token, staticSource.Pick)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	transport.NewAPI(service, lb).Register(mux)
	mux.Handle("/webhook", webhook)
	mux.HandleFunc("/ws/leaderboard", transport.NewWSHandler(service).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia backend on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
