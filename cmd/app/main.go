// File: cmd/app/main.go
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

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-news-editor/internal/application"
	"telegram-news-editor/internal/config"
	"telegram-news-editor/internal/domain/ports/adapter"
	"telegram-news-editor/internal/domain/ports/repository"
	"telegram-news-editor/internal/domain/post"
	aiAdapters "telegram-news-editor/internal/infra/adapters/ai"
	tele "telegram-news-editor/internal/infra/adapters/telegram"
	"telegram-news-editor/internal/infra/api"
	"telegram-news-editor/internal/infra/audit"
	pg "telegram-news-editor/internal/infra/db/postgres"
	"telegram-news-editor/internal/infra/i18n"
	"telegram-news-editor/internal/infra/logging"
	"telegram-news-editor/internal/infra/metrics"
	red "telegram-news-editor/internal/infra/redis"
	"telegram-news-editor/internal/infra/worker"
	"telegram-news-editor/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logging.Global = *logger

	if cfg.Runtime.MintToken {
		tok, err := api.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL).Mint("admin")
		if err != nil {
			logger.Fatal().Err(err).Msg("mint admin token")
		}
		fmt.Println(tok)
		return
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("exit")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Generation gateway ----
	gen, err := newGateway(ctx, &cfg.AI)
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	gen = aiAdapters.NewLimitedAI(gen, cfg.AI.ConcurrentLimit, cfg.AI.Timeout)
	gen = aiAdapters.NewInstrumentedAI(gen, aiAdapters.NewTiktokenCounter(cfg.AI.Model), logger)
	logger.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("generation gateway ready")

	// ---- Audit log ----
	var auditRepo repository.AuditLogRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		auditRepo = pg.NewAuditLogRepo(pool)
		logger.Info().Msg("audit log: postgres")
	} else {
		auditRepo = audit.NewCSVLog(cfg.Audit.CSVPath)
		logger.Info().Str("path", cfg.Audit.CSVPath).Msg("audit log: csv")
	}

	// ---- Redis in-flight lock (optional) ----
	var locker repository.Locker
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
		locker = red.NewLocker(rc)
	}

	// ---- Telegram clients ----
	// polling needs a long-lived client; channel calls are bounded by bot.request_timeout
	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.Runtime.Dev
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram authorized")

	channelBot, err := tgbotapi.NewBotAPIWithClient(cfg.Bot.Token, tgbotapi.APIEndpoint, &http.Client{Timeout: cfg.Bot.RequestTimeout})
	if err != nil {
		return fmt.Errorf("telegram channel client: %w", err)
	}
	publisher, err := tele.NewChannelPublisher(channelBot, cfg.Channel.ID, cfg.Bot.ParseMode)
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}

	// ---- Use cases ----
	// the progress hook needs the bot adapter, which needs the facade; bind it late
	var notifier adapter.TelegramBotAdapter
	editorUC := usecase.NewEditorUseCase(
		usecase.NewSessionRegistry(),
		gen,
		publisher,
		auditRepo,
		post.NewFormatter(cfg.Editor.CommentaryLabels),
		locker,
		usecase.EditorOptions{
			MinSeedLength: cfg.Editor.MinSeedLength,
			MaxSeedLength: cfg.Editor.MaxSeedLength,
			CopyPrefixes:  cfg.Editor.CopyPrefixes,
			LockTTL:       cfg.Redis.LockTTL,
			BeforeGenerate: func(ctx context.Context, operatorID int64, revision bool) {
				if notifier != nil {
					application.ProgressNotifier(notifier, tr, logger)(ctx, operatorID, revision)
				}
			},
		},
		logger,
	)
	auditUC := usecase.NewAuditUseCase(auditRepo, logger)
	facade := application.NewEditorFacade(editorUC, auditUC, tr, cfg.Bot.OwnerID, logger)

	// ---- Transport ----
	pool := worker.NewPool(cfg.Bot.Workers, 32, logger)
	pool.Start(ctx)
	defer pool.Stop()

	botAdapter, err := tele.NewRealTelegramBotAdapter(bot, &cfg.Bot, facade, pool, tr, logger)
	if err != nil {
		return fmt.Errorf("telegram adapter: %w", err)
	}
	notifier = botAdapter
	if err := botAdapter.SetMenuCommands(ctx); err != nil {
		logger.Warn().Err(err).Msg("set bot commands")
	}

	// ---- Admin HTTP ----
	var server *http.Server
	if cfg.Admin.Port > 0 {
		auth := api.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		srv := api.NewServer(editorUC, auditUC, auth, cfg.Bot.OwnerID, cfg.Bot.RequestTimeout, logger)
		server = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", server.Addr).Msg("admin http listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("admin http server")
			}
		}()
	}

	logger.Info().Int64("owner", cfg.Bot.OwnerID).Str("channel", cfg.Channel.ID).Msg("bot started")
	if err := botAdapter.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("telegram polling stopped")
	}

	// ---- Graceful shutdown ----
	if server != nil {
		shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shCancel()
		if err := server.Shutdown(shCtx); err != nil {
			logger.Warn().Err(err).Msg("admin http shutdown")
		}
	}
	return nil
}

func newGateway(ctx context.Context, c *config.AIConfig) (adapter.GenerationGateway, error) {
	switch c.Provider {
	case "openai":
		return aiAdapters.NewOpenAIAdapter(aiAdapters.OpenAIOptions{
			APIKey:      c.OpenAIKey,
			BaseURL:     c.OpenAIBaseURL,
			Model:       c.Model,
			MaxTokens:   c.MaxTokens,
			Temperature: c.Temperature,
		})
	case "gemini":
		return aiAdapters.NewGeminiAdapter(ctx, c.GeminiKey, c.GeminiURL, c.Model, c.MaxTokens, c.Temperature)
	case "noop":
		return aiAdapters.NewNoopAIAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}
