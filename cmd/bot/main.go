package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/ferret9/worklogbot/external/config"
	discordimpl "github.com/ferret9/worklogbot/external/discord"
	repositoryimpl "github.com/ferret9/worklogbot/external/repository"
	schedulerimpl "github.com/ferret9/worklogbot/external/scheduler"
	webhookimpl "github.com/ferret9/worklogbot/external/webhook"
	"github.com/ferret9/worklogbot/internal/bot"
	"github.com/ferret9/worklogbot/internal/channels"
	"github.com/ferret9/worklogbot/internal/config"
	discordpkg "github.com/ferret9/worklogbot/internal/discord"
	"github.com/ferret9/worklogbot/internal/report"
	"github.com/ferret9/worklogbot/internal/roles"
	schedulerpkg "github.com/ferret9/worklogbot/internal/scheduler"
	"github.com/ferret9/worklogbot/internal/worklog"
	"github.com/samber/do/v2"
)

const (
	discordConnectTimeout = 20 * time.Second
	startupTaskTimeout    = 60 * time.Second
	shutdownTimeout       = 10 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching discord bot")
	runBot(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	discordimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	schedulerimpl.RegisterDI(injector)
	worklog.RegisterDI(injector)
	roles.RegisterDI(injector)
	channels.RegisterDI(injector)
	report.RegisterDI(injector)
	bot.RegisterDI(injector)

	return injector
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	manager, err := do.Invoke[*bot.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve bot manager", "error", err)
		os.Exit(1)
	}
	reconciler, err := do.Invoke[*roles.Reconciler](injector)
	if err != nil {
		slog.Error("failed to resolve role reconciler", "error", err)
		os.Exit(1)
	}
	cache, err := do.Invoke[*channels.Cache](injector)
	if err != nil {
		slog.Error("failed to resolve channel mapping cache", "error", err)
		os.Exit(1)
	}
	sched, err := do.Invoke[schedulerpkg.Scheduler](injector)
	if err != nil {
		slog.Error("failed to resolve scheduler", "error", err)
		os.Exit(1)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancelConnect()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(connectCtx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTaskTimeout)
	defer cancelStartup()

	if _, err := reconciler.SetupRoles(startupCtx, cfg.DiscordGuildID); err != nil {
		slog.Error("role setup failed", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}
	if _, err := cache.LoadAll(startupCtx, cfg.DiscordGuildID); err != nil {
		slog.Error("channel mapping cache load failed", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}
	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, manager.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}

	dc.RegisterSlashCommandHandler(manager.HandleSlashCommand)
	dc.RegisterVoiceStateUpdateHandler(manager.HandleVoiceStateUpdate)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID)

	for _, job := range manager.ScheduledJobs() {
		if err := sched.Schedule(job); err != nil {
			slog.Error("failed to schedule job", "error", err, "job", job.Name)
			os.Exit(1)
		}
	}
	sched.Start()
	slog.Info("scheduler started", "jobs", len(manager.ScheduledJobs()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelStop()
	if err := sched.Stop(stopCtx); err != nil {
		slog.Error("scheduler stop failed", "error", err)
	}
}
