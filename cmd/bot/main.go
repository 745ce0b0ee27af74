package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/lizardlabs/ticketbot/internal/api/http"
	"github.com/lizardlabs/ticketbot/internal/api/http/handlers"
	"github.com/lizardlabs/ticketbot/internal/commands"
	"github.com/lizardlabs/ticketbot/internal/config"
	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/events"
	"github.com/lizardlabs/ticketbot/internal/github"
	"github.com/lizardlabs/ticketbot/internal/observability"
	"github.com/lizardlabs/ticketbot/internal/persistence"
	"github.com/lizardlabs/ticketbot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := persistence.NewGuildCache(cfg.Redis, logger)
	defer cache.Close()

	dc := discord.NewClient(cfg.Discord.Token, cfg.Discord.AppID, logger)
	directory := service.NewGuildDirectory(dc, cache, cfg.Discord.GuildID, logger)
	gh := github.NewClient(cfg.GitHub, logger)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(cfg.Webhook, logger)
	notifications.RegisterHandlers(dispatcher)

	tickets := service.NewTicketService(service.TicketDependencies{
		Discord:    dc,
		Directory:  directory,
		Dispatcher: dispatcher,
		Config:     cfg.Discord,
		Logger:     logger,
	})
	converter := service.NewConvertService(service.ConvertDependencies{
		Discord:    dc,
		Directory:  directory,
		GitHub:     gh,
		Dispatcher: dispatcher,
		Config:     cfg.Discord,
		Logger:     logger,
	})

	registerCommands(ctx, dc, cfg.Discord, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger)

	healthHandler := handlers.NewHealthHandler(dc, cache, logger)
	interactionsHandler := handlers.NewInteractionsHandler(tickets, converter, dc, cfg.Discord, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       healthHandler,
		Interactions: interactionsHandler,
		Verify:       discord.VerifyMiddleware(cfg.Discord.PublicKey, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("bot started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("guild_id", cfg.Discord.GuildID),
		zap.Bool("github_enabled", gh.Enabled()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// registerCommands replaces the application command set on startup. With a
// guild id configured the commands are registered per guild, which propagates
// instantly; otherwise they go global and may take up to an hour to appear.
func registerCommands(ctx context.Context, dc *discord.Client, cfg config.DiscordConfig, logger *zap.Logger) {
	defs := commands.All()
	var err error
	if cfg.GuildID != "" {
		err = dc.BulkOverwriteGuildCommands(ctx, cfg.GuildID, defs)
	} else {
		err = dc.BulkOverwriteGlobalCommands(ctx, defs)
	}
	if err != nil {
		logger.Fatal("failed to register application commands", zap.Error(err))
	}
	logger.Info("application commands registered",
		zap.Int("count", len(defs)),
		zap.Bool("guild_scoped", cfg.GuildID != ""))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
