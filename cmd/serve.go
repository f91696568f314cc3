package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"cow-notifier/category"
	"cow-notifier/command"
	"cow-notifier/config"
	"cow-notifier/discourse"
	"cow-notifier/feed"
	"cow-notifier/mention"
	"cow-notifier/notify"
	"cow-notifier/pkg/news"
	"cow-notifier/poll"
	"cow-notifier/render"
	"cow-notifier/server"
	"cow-notifier/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync pipeline, command worker, and webhook server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)}))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{}

	session := discourse.NewSession(httpClient, cfg.Forum.BaseURL, cfg.Forum.Login,
		cfg.Forum.Password, cfg.Forum.CookieName, cfg.Forum.SessionTTL, logger)
	client := discourse.NewClient(httpClient, session, cfg.Forum.BaseURL, cfg.Forum.Timeout, logger)
	resolver := category.New(client, logger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}()
	subs := store.NewRedisStore(rdb)

	scanner := mention.New(subs, logger)
	renderer := render.New(scanner, cfg.Forum.BaseURL, logger)

	engine, err := feed.NewEngine(client, resolver,
		store.NewCursorFile(cfg.Sync.CursorPath), cfg.Forum.TZOffset, logger)
	if err != nil {
		return err
	}

	var sender notify.Sender
	if cfg.Telegram.Mock {
		logger.Info("Using mock sender; no messages will be delivered")
		sender = notify.NewMockSender(logger)
	} else {
		sender = notify.NewTelegram(httpClient, cfg.Telegram.BaseURL, cfg.Telegram.Token, logger)
	}
	dispatcher := notify.NewDispatcher(sender, subs, logger)

	monitor := poll.New(engine, renderer, dispatcher, cfg.Sync.Interval, logger)

	queue := make(chan news.Command, cfg.Server.QueueSize)
	worker := command.NewWorker(queue, subs, resolver, dispatcher, logger)

	srv := server.New(&server.Config{
		Logger: logger,
		Queue:  queue,
		Secret: cfg.Server.Secret,
		Port:   cfg.Server.Port,
	})

	// Any worker exiting with an error takes the whole process down.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	go func() { errCh <- monitor.Run(runCtx) }()
	go func() { errCh <- worker.Run(runCtx) }()
	go func() { errCh <- srv.Run(runCtx) }()

	var firstErr error
	for range 3 {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	logger.Info("Shutdown complete")
	return firstErr
}
