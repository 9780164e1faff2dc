package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labeeb-ai/labeeb/internal/api"
	"github.com/labeeb-ai/labeeb/internal/cache"
	"github.com/labeeb-ai/labeeb/internal/gateway"
	"github.com/labeeb-ai/labeeb/internal/governance"
	"github.com/labeeb-ai/labeeb/internal/interpreter"
	"github.com/labeeb-ai/labeeb/internal/model"
	"github.com/labeeb-ai/labeeb/internal/observability"
	"github.com/labeeb-ai/labeeb/internal/ops"
	"github.com/labeeb-ai/labeeb/internal/plan"
	"github.com/labeeb-ai/labeeb/internal/store"
	"github.com/labeeb-ai/labeeb/pkg/config"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Pretty)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	history, err := store.NewHistoryStore(cfg.Memory.Path)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer history.Close()

	// Operation registry
	registry := ops.NewRegistry()

	files := ops.NewFiles(cfg.App.Workspace)
	files.Register(registry)

	shell := ops.NewShell()
	shell.Register(registry)

	desktop := ops.NewDesktop("")
	desktop.Register(registry)

	browser := ops.NewBrowser("")
	browser.Register(registry)
	defer browser.Shutdown()

	scraper := ops.NewScraper()
	scraper.Register(registry)

	search, err := ops.NewSearch()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize search operation")
	} else {
		search.Register(registry)
	}

	tasks := ops.NewTasks(history)
	tasks.Register(registry)

	ops.RegisterEcho(registry)

	// Default safety rules: block dangerous destructive commands
	gov := governance.NewDefaultPolicyEngine()
	_ = gov.DenyParameters(`rm\s+-rf`)
	_ = gov.DenyParameters(`mkfs`)
	_ = gov.DenyParameters(`shutdown`)
	_ = gov.DenyParameters(`reboot`)

	// Model client (first enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("no enabled provider found in config")
	}

	llm, err := model.NewModel(pName, pCfg.Model, pCfg.BaseURL, pCfg.APIKey)
	if err != nil {
		log.Fatalf("failed to initialize model provider %s: %v", pName, err)
	}

	opts := model.DefaultOptions()
	if pCfg.Temperature > 0 {
		opts.Temperature = pCfg.Temperature
	}
	if pCfg.TopP > 0 {
		opts.TopP = pCfg.TopP
	}
	if pCfg.TopK > 0 {
		opts.TopK = pCfg.TopK
	}
	if pCfg.MaxTokens > 0 {
		opts.MaxTokens = pCfg.MaxTokens
	}
	client := model.NewLLMClient(llm, opts)

	executor := plan.NewExecutor(registry, gov, logger)
	prompts := model.NewPrompts(cfg.App.PromptsDir)
	responseCache := cache.New(cfg.Cache.MaxSize, time.Duration(cfg.Cache.TTL))

	processor := interpreter.NewProcessor(client, executor, responseCache, history, prompts, logger)
	processor.MinConfidence = cfg.App.MinConfidence
	processor.Transcript = observability.NewTranscript(cfg.Logging.LogDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional telegram gateway
	var messenger interpreter.Messenger
	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, processor, logger)
		if err != nil {
			log.Fatalf("failed to start telegram gateway: %v", err)
		}
		messenger = tg
		go func() {
			if err := tg.Start(); err != nil {
				logger.Error().Err(err).Msg("telegram gateway stopped")
				stop()
			}
		}()
		defer tg.Stop()
	}

	scheduler := interpreter.NewScheduler(processor, history, messenger, logger)
	go scheduler.Start(ctx)

	// HTTP API
	if cfg.Server.Enabled {
		server := api.New(cfg.Server.Addr, processor, history, responseCache, logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error().Err(err).Msg("http server stopped")
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server forced to shutdown")
			}
		}()
	}

	// Live status line (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
			}
		}
	}()

	<-ctx.Done()

	observability.CleanupTerminal()
	logger.Info().Msg("shutting down")
}
