package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-redis/redis/v7"
	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/quaver/qbot/internal/api"
	"github.com/quaver/qbot/internal/bot"
	yamlConfig "github.com/quaver/qbot/internal/config"
	"github.com/quaver/qbot/internal/model"
	"github.com/quaver/qbot/internal/modules/auth"
	"github.com/quaver/qbot/internal/modules/donator"
	"github.com/quaver/qbot/internal/modules/help"
	"github.com/quaver/qbot/internal/modules/moderation"
	"github.com/quaver/qbot/internal/modules/reply"
	"github.com/quaver/qbot/internal/modules/settings"
	"github.com/sirupsen/logrus"
)

var opts struct {
	Config  string `short:"c" long:"config" default:"config.yml" description:"Configuration file"`
	EnvFile string `short:"e" long:"env" default:".env" description:"Environment file with secrets"`
	Listen  string `short:"l" long:"listen" description:"REST endpoint listen address, overrides config"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`
	Sample  bool   `long:"sample" description:"Print sample configuration and exit"`
}

func readConfig(log *logrus.Logger, configPath string) *yamlConfig.Root {
	configFile, err := os.Open(configPath)
	if err != nil {
		log.Fatal(err)
	}

	c, err := yamlConfig.Read(configFile)
	if err != nil {
		log.Fatal(err)
	}

	err = configFile.Close()
	if err != nil {
		log.Fatal(err)
	}

	return c
}

func configureLog(log *logrus.Logger, c *yamlConfig.Root) {
	if c.Private.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if c.Private.LogLevel != "" {
		level, err := logrus.ParseLevel(c.Private.LogLevel)
		if err != nil {
			log.WithError(err).Warn("Unknown log level")
		} else {
			log.SetLevel(level)
		}
	}

	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
}

func openHistory(c *yamlConfig.Root, client *redis.Client) (model.MuteHistoryStore, error) {
	switch c.Private.History.Backend {
	case yamlConfig.HistoryBackendFile:
		return model.OpenFileHistory(c.Private.History.File)
	default:
		return model.NewRepository(client), nil
	}
}

func openEntitlements(log *logrus.Logger, c *yamlConfig.Root) (model.EntitlementStore, func()) {
	sql := c.Private.SQL

	if sql.DSN == "" {
		log.Warn("Billing database is not configured, donator reconciliation disabled")
		return nil, func() {}
	}

	store, err := model.OpenEntitlements(sql.Driver, sql.DSN, sql.MaxOpen)
	if err != nil {
		log.WithError(err).Error("Opening billing database, donator reconciliation disabled")
		return nil, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = store.Ping(ctx); err != nil {
		log.WithError(err).Warn("Billing database is not reachable yet")
	}

	return store, func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Closing billing database")
		}
	}
}

func main() {
	log := logrus.New()

	_, err := flags.Parse(&opts)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}

	if opts.Sample {
		sample := &yamlConfig.Root{}
		sample.Defaults()

		if err = yamlConfig.Write(os.Stdout, sample); err != nil {
			log.Fatal(err)
		}

		return
	}

	if err = godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Loading environment file")
	}

	configRoot := readConfig(log, opts.Config)
	configRoot.ApplyEnv()
	configRoot.Defaults()

	if opts.Listen != "" {
		configRoot.Private.API.Listen = opts.Listen
	}

	if err = configRoot.Validate(); err != nil {
		log.Fatal(err)
	}

	configureLog(log, configRoot)

	dg, err := discordgo.New("Bot " + configRoot.Private.Token)
	if err != nil {
		log.Fatal(err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	client := redis.NewClient(&redis.Options{
		Addr:     configRoot.Private.Redis.Address,
		Password: configRoot.Private.Redis.Password,
		DB:       configRoot.Private.Redis.DB,
	})

	history, err := openHistory(configRoot, client)
	if err != nil {
		log.Fatal(err)
	}

	entitlements, closeEntitlements := openEntitlements(log, configRoot)
	defer closeEntitlements()

	donatorModule := donator.New()

	b, err := bot.NewBot(bot.Options{
		Discord:      dg,
		Client:       client,
		Config:       configRoot,
		Log:          log,
		History:      history,
		Entitlements: entitlements,
		Modules: []bot.Module{
			reply.New(),
			auth.New(),
			help.New(),
			settings.New(),
			donatorModule,
			moderation.New(),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if configRoot.Private.API.Secret == "" {
		log.Warn("REST secret is not configured, donator endpoints will reject every call")
	}

	server := api.New(api.Options{
		Gateway: donatorModule.Gateway(),
		Log:     log,
		Secret:  configRoot.Private.API.Secret,
		Listen:  configRoot.Private.API.Listen,
		Metrics: configRoot.Private.API.Metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.WithError(err).Error("Serving REST endpoint")
			stop()
		}
	}()

	err = b.Serve(ctx)
	if err != nil {
		log.WithError(err).Error("Running bot")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutting down REST endpoint")
	}
}
