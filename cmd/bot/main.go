package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/safeguard-bot/internal/config"
	"github.com/aliskhannn/safeguard-bot/internal/delivery/rest"
	"github.com/aliskhannn/safeguard-bot/internal/delivery/telegram"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/logger"
	"github.com/aliskhannn/safeguard-bot/internal/repository"
	"github.com/aliskhannn/safeguard-bot/internal/service"
	"github.com/aliskhannn/safeguard-bot/internal/storage"
)

func main() {
	// A missing .env file is fine: the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("application stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize question bank.
	questionRepo, err := repository.NewQuestionRepository(cfg.QuestionsJSONPath)
	if err != nil {
		return err
	}
	lg.Info("question bank loaded", zap.Int("questions", questionRepo.Len()))

	// Initialize database.
	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(dsn); err != nil {
			return err
		}
		lg.Info("database schema is up to date")
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        cfg.DB.MaxConnections,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := pgrepo.NewUserRepository(pool)
	resultRepo := pgrepo.NewResultRepository(pool)
	credentialRepo := pgrepo.NewCredentialRepository(pool)
	transactor := postgres.NewTransactor(pool)

	// Initialize Telegram.
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Telegram.Debug
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands()...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	// Initialize services.
	notifier := telegram.NewNotifier(
		bot,
		cfg.Telegram.AdminChatIDs,
		cfg.Organization,
		questionRepo,
		cfg.Quiz.PassScore,
		time.Now,
		lg,
	)

	listener := postgres.NewListener(pool, postgres.UsersChangedChannel, lg)
	watcher := service.NewRosterWatcher(listener, userRepo, lg)

	sessions := storage.NewQuizStorage()
	quizService := service.NewQuizService(
		questionRepo,
		userRepo,
		resultRepo,
		notifier,
		sessions,
		cfg.Quiz.Policy(),
		rand.New(rand.NewSource(time.Now().UnixNano())),
		time.Now,
		lg,
	)
	userService := service.NewUserService(userRepo, credentialRepo, transactor, cfg.AdminEmails, time.Now, lg)
	rosterService := service.NewRosterService(watcher, userRepo, notifier, time.Now, lg)

	if err := service.ValidateSchedule(cfg.Reminders.Schedule); err != nil {
		return err
	}
	reminderService := service.NewReminderService(
		rosterService,
		quizService,
		cfg.Reminders.Schedule,
		cfg.Reminders.Enabled,
		location,
		lg,
	)

	handler := telegram.NewHandler(
		bot,
		lg,
		userService,
		quizService,
		rosterService,
		userRepo,
		storage.NewMessageStorage(),
		storage.NewRegistrationStorage(cfg.RegistrationTTL),
		cfg.Quiz.PassScore,
		cfg.Telegram.AdvanceDelay,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watcher.Run(gctx)
	})

	g.Go(func() error {
		return reminderService.Start(gctx)
	})

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := bot.GetUpdatesChan(u)

		go func() {
			<-gctx.Done()
			bot.StopReceivingUpdates()
		}()

		return handler.Run(gctx, updates)
	})

	if cfg.HTTP.Enabled {
		tokens := rest.NewTokenIssuer(cfg.HTTP.JWTSecret, cfg.HTTP.TokenTTL, time.Now)
		api := rest.NewHandler(userService, rosterService, tokens, lg)
		server := rest.NewServer(cfg.HTTP.Addr, rest.NewRouter(api, cfg.HTTP.AllowedOrigins, lg), lg)

		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	lg.Info("application started", zap.String("env", cfg.Env))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if n := len(sessions.PendingUsers()); n > 0 {
		lg.Warn("unsaved results are lost on shutdown", zap.Int("users", n))
	}
	lg.Info("shutdown complete")
	return nil
}
