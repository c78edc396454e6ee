package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/ember/internal/cli"
	"github.com/alexanderramin/ember/internal/collector"
	"github.com/alexanderramin/ember/internal/config"
	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/embedding"
	"github.com/alexanderramin/ember/internal/llm"
	"github.com/alexanderramin/ember/internal/messagebus"
	"github.com/alexanderramin/ember/internal/metrics"
	"github.com/alexanderramin/ember/internal/recommend"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/alexanderramin/ember/internal/retrieval"
	"github.com/alexanderramin/ember/internal/sentiment"
	"github.com/alexanderramin/ember/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	llmCfg := llm.LoadConfig()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	userRepo := repository.NewSQLiteUserRepo(database)
	workspaceRepo := repository.NewSQLiteWorkspaceRepo(database)
	analysisRepo := repository.NewSQLiteAnalysisRepo(database)
	profileRepo := repository.NewSQLiteProfileRepo(database)
	recRepo := repository.NewSQLiteRecommendationRepo(database)
	appRepo := repository.NewSQLiteApplicationRepo(database)
	strategyRepo := repository.NewSQLiteStrategyRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	m := metrics.New()
	observer := llm.MultiObserver{llm.NoopObserver{}, metrics.NewLLMObserver(m)}
	if llmCfg.LogCalls {
		observer[0] = llm.NewLogObserver(os.Stderr)
	}
	var llmClient llm.LLMClient = llm.UnavailableClient{}
	if llmCfg.Enabled {
		llmClient = llm.NewOllamaClient(llmCfg, observer)
	}

	embedder := embedding.NewOllamaClient(
		embedding.WithEndpoint(llmCfg.Endpoint),
		embedding.WithModel(llmCfg.EmbedModel),
	)
	index := retrieval.NewIndex(embedder, strategyRepo,
		retrieval.WithTopK(cfg.Retrieval.TopK),
		retrieval.WithMinSimilarity(cfg.Retrieval.MinSimilarity),
	)
	if err := index.Load(ctx); err != nil {
		return fmt.Errorf("loading strategies: %w", err)
	}

	opts := collector.DefaultOptions()
	opts.BackToBackGap = time.Duration(cfg.Collector.BackToBackGapMinutes) * time.Minute
	opts.ActivityDays = cfg.Collector.ActivityDays
	opts.LookbackDays = cfg.Sentiment.LookbackDays
	opts.MaxEntries = cfg.Sentiment.MaxEntries
	col := collector.New(userRepo, workspaceRepo, opts)

	analyzer := sentiment.NewAnalyzer(llmClient, llmCfg.Timeout(llm.TaskSentiment))
	generator := recommend.NewGenerator(llmClient, llmCfg.Timeout(llm.TaskRecommend))

	analysisOpts := []service.AnalysisOption{
		service.WithMetrics(m),
		service.WithLogger(logger),
		service.WithUseCaseObserver(service.NewSlogUseCaseObserver(logger)),
		service.WithOutcomeTracking(appRepo),
	}
	var bus *messagebus.NatsMessageBus
	if cfg.NATS.URL != "" {
		bus, err = messagebus.NewNatsMessageBus(messagebus.Config{URL: cfg.NATS.URL, Logger: logger})
		if err != nil {
			// Analyses still work locally; only publishing and watch are lost.
			logger.Warn("message bus unavailable", "url", cfg.NATS.URL, "error", err)
			bus = nil
		} else {
			defer bus.Close()
			analysisOpts = append(analysisOpts, service.WithPublisher(bus))
		}
	}

	analysisSvc := service.NewAnalysisService(col, analyzer, analysisRepo, profileRepo, cfg, analysisOpts...)
	hook := service.NewReanalysisHook(analysisSvc,
		time.Duration(cfg.Reanalysis.TimeoutSeconds)*time.Second, logger, m)
	applySvc := service.NewApplyService(recRepo, appRepo, analysisRepo, userRepo, analysisSvc, uow,
		service.WithReanalysisHook(hook),
		service.WithApplyMetrics(m),
		service.WithApplyLogger(logger),
		service.WithApplyObserver(service.NewSlogUseCaseObserver(logger)),
	)
	recommendSvc := service.NewRecommendationService(analysisRepo, userRepo, workspaceRepo, index,
		generator, analysisSvc, uow, m, service.NewSlogUseCaseObserver(logger))

	app := &cli.App{
		Analyze:        analysisSvc,
		History:        analysisSvc,
		Recommend:      recommendSvc,
		Apply:          applySvc,
		Feedback:       applySvc,
		Strategies:     service.NewStrategyService(index),
		ProfileMinDays: cfg.Patterns.MinDays,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if bus != nil {
		app.Watch = &cli.WatchDeps{
			Mutations:      bus,
			Reanalysis:     hook,
			MetricsAddr:    cfg.Metrics.Addr,
			MetricsHandler: promhttp.Handler(),
		}
	}

	err = cli.NewRootCmd(app).ExecuteContext(ctx)
	hook.Wait()
	return err
}
