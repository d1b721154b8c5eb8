package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pokerlog/telegram-poker-bot/config"
	"github.com/pokerlog/telegram-poker-bot/internal/bot"
	"github.com/pokerlog/telegram-poker-bot/internal/maintenance"
	"github.com/pokerlog/telegram-poker-bot/internal/ocr"
	"github.com/pokerlog/telegram-poker-bot/internal/session"
	"github.com/pokerlog/telegram-poker-bot/internal/storage"
	"github.com/pokerlog/telegram-poker-bot/internal/storage/pg"
	"github.com/pokerlog/telegram-poker-bot/internal/telegram"
	"github.com/pokerlog/telegram-poker-bot/internal/venue"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const logFileName = "telegram-poker-bot.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()

	if missing := config.MissingRequired(); len(missing) > 0 {
		if config.IsInteractiveTerminal() {
			if !config.RunSetupWizard() {
				config.WaitOnWindows()
				os.Exit(1)
			}
		} else {
			// Non-interactive (systemd, containers) - fail with a clear error
			config.FatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	settings, err := config.Load()
	if err != nil {
		config.FatalWithWait("invalid configuration: %v", err)
	}
	zerolog.SetGlobalLevel(settings.LogLevel)

	// JOURNAL_STREAM is set by systemd when running as a service; journald
	// keeps the logs there.
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); !underSystemd {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			config.FatalWithWait("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tg, err := tgbotapi.NewBotAPI(settings.BotToken)
	if err != nil {
		config.FatalWithWait("failed to initialize telegram bot: %v", err)
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	telegram.RegisterCommands(tg)

	// The SQLite database always holds the ticket cache and, when
	// configured, sessions. Tournaments go to Postgres if DATABASE_URL is set.
	sqliteStore, err := storage.NewSQLiteStore(settings.DBPath)
	if err != nil {
		config.FatalWithWait("failed to initialize sqlite store: %v", err)
	}
	defer sqliteStore.Close()
	log.Info().Str("dbPath", settings.DBPath).Msg("sqlite store initialized")

	var (
		tournaments bot.TournamentStore   = sqliteStore
		venues      venue.PreferenceStore = sqliteStore
	)
	if settings.DatabaseURL != "" {
		pgStore, err := pg.Open(ctx, settings.DatabaseURL)
		if err != nil {
			config.FatalWithWait("failed to connect to postgres: %v", err)
		}
		defer pgStore.Close()
		tournaments, venues = pgStore, pgStore
		log.Info().Msg("using postgres for tournaments")
	}

	var (
		sessions      session.Store
		sessionPruner maintenance.SessionPruner
	)
	switch settings.SessionBackend {
	case config.SessionBackendSQLite:
		sqliteSessions := sqliteStore.Sessions()
		sessions, sessionPruner = sqliteSessions, sqliteSessions
	default:
		sessions = session.NewMemoryStore()
	}
	log.Info().Str("backend", settings.SessionBackend).Msg("session store initialized")

	var tickets bot.TicketReader
	if settings.OCREnabled() {
		geminiAnalyzer, err := ocr.NewGeminiAnalyzer(ctx, settings.GeminiAPIKey)
		if err != nil {
			config.FatalWithWait("failed to initialize gemini analyzer: %v", err)
		}
		tickets = ocr.NewReader(ocr.NewCachedAnalyzer(geminiAnalyzer, sqliteStore))
		log.Info().Msg("ticket recognition enabled")
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, ticket recognition disabled")
	}

	engine := bot.New(bot.Deps{
		Tournaments: tournaments,
		Venues:      venues,
		Tickets:     tickets,
		Delivery:    telegram.NewDelivery(tg),
		Sessions:    sessions,
	}, bot.WithExternalTimeout(settings.ExternalTimeout))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return telegram.Run(ctx, tg, engine)
	})

	maintenanceService := maintenance.NewService(sqliteStore, sessionPruner)
	g.Go(func() error {
		maintenanceService.Run(ctx)
		return nil
	})

	err = g.Wait()
	log.Info().Msg("waiting for active conversations to finish")
	engine.Shutdown()

	if err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}
