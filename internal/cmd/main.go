package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gamenight/internal/discord"
	"github.com/mcdev12/gamenight/internal/events"
	"github.com/mcdev12/gamenight/internal/gateway"
	"github.com/mcdev12/gamenight/internal/lobby"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.LogLevel)

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal().Msg("DISCORD_TOKEN environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event publishing is best-effort and entirely optional.
	var pub lobby.Publisher = events.NopPublisher{}
	if cfg.NATS.Enabled {
		p, err := events.NewPublisher(ctx, cfg.NATS.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect event publisher")
		}
		defer p.Close()
		pub = p
	}

	bot, err := discord.NewBot(token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord bot")
	}

	repo := lobby.NewRepository()
	app := lobby.NewApp(repo, bot, pub, clockwork.NewRealClock())
	bot.Bind(app)

	if err := bot.Open(); err != nil {
		log.Fatal().Err(err).Msg("failed to open discord session")
	}
	defer bot.Close()

	if err := bot.RegisterCommands(cfg.Discord.GuildID); err != nil {
		log.Fatal().Err(err).Msg("failed to register commands")
	}

	// The "register" argument only registers commands and exits, handy
	// for CI and first deploys.
	if len(os.Args) > 1 && os.Args[1] == "register" {
		return
	}

	if cfg.Gateway.Enabled {
		startGateway(ctx, cfg, app)
	}

	log.Info().Msg("gamenight bot running")
	<-ctx.Done()
	log.Info().Msg("shutting down")
}

// startGateway runs the live lobby feed: JetStream consumer fanning out
// to WebSocket watchers plus the snapshot HTTP endpoints.
func startGateway(ctx context.Context, cfg *Config, app *lobby.App) {
	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go cm.Start(ctx)

	if cfg.NATS.Enabled {
		consumerCfg := gateway.DefaultConsumerConfig()
		consumerCfg.URL = cfg.NATS.URL
		consumer, err := gateway.NewEventConsumer(ctx, cm, consumerCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start gateway event consumer")
		}
		go func() {
			defer consumer.Close()
			if err := consumer.Run(ctx); err != nil {
				log.Error().Err(err).Msg("gateway event consumer stopped")
			}
		}()
	}

	srv := gateway.NewServer(cm, app)
	go func() {
		if err := srv.ListenAndServe(ctx, cfg.Gateway.Addr); err != nil {
			log.Error().Err(err).Msg("gateway server stopped")
		}
	}()
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
