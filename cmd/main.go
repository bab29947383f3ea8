package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/jmorelli/video-sub-pipeline/internal/config"
	"github.com/jmorelli/video-sub-pipeline/internal/contextgen"
	"github.com/jmorelli/video-sub-pipeline/internal/genai"
	"github.com/jmorelli/video-sub-pipeline/internal/httpapi"
	"github.com/jmorelli/video-sub-pipeline/internal/jobs"
	"github.com/jmorelli/video-sub-pipeline/internal/language"
	"github.com/jmorelli/video-sub-pipeline/internal/library"
	"github.com/jmorelli/video-sub-pipeline/internal/llm"
	"github.com/jmorelli/video-sub-pipeline/internal/media"
	"github.com/jmorelli/video-sub-pipeline/internal/persistence"
	"github.com/jmorelli/video-sub-pipeline/internal/pipeline"
	"github.com/jmorelli/video-sub-pipeline/internal/provider"
	"github.com/jmorelli/video-sub-pipeline/internal/service"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
	"github.com/jmorelli/video-sub-pipeline/internal/subtitle"
	"github.com/jmorelli/video-sub-pipeline/internal/transcribe"
	"github.com/jmorelli/video-sub-pipeline/internal/translate"
	"github.com/jmorelli/video-sub-pipeline/pkg/log"
)

var version = "dev"

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API server with background workers")
	videoPath := flag.String("video", "", "process a single video file and exit")
	sourceLanguage := flag.String("source", "", "source language code for -video (defaults to DEFAULT_SOURCE_LANGUAGE)")
	targetLanguage := flag.String("target", "", "target language code for -video")
	providerName := flag.String("provider", "", "LLM provider for -video (openai or gemini)")
	transcriptCSV := flag.String("transcript-csv", "", "transcript CSV to convert with -srt-from-csv")
	srtFromCSV := flag.String("srt-from-csv", "", "write an SRT file from -transcript-csv and exit")
	useOriginal := flag.Bool("original-text", false, "use original instead of translated text with -srt-from-csv")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	// Pure file conversion, no configuration needed.
	if *srtFromCSV != "" {
		if *transcriptCSV == "" {
			fmt.Fprintln(os.Stderr, "-srt-from-csv requires -transcript-csv")
			os.Exit(2)
		}
		if err := subtitle.GenerateSRTFromCSV(*transcriptCSV, *srtFromCSV, !*useOriginal); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(*srtFromCSV)
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := log.LevelInfo
	if cfg.Server.Debug {
		level = log.LevelDebug
	}
	log.InitLogger(level)
	logger := log.GetLogger()

	if !media.CheckFFmpegInstalled() {
		logger.Warn("ffmpeg not found in PATH, audio extraction will fail")
	}

	store := storage.NewManager(cfg.Storage)
	if err := store.EnsureDirs(); err != nil {
		logger.Fatal("Failed to create storage directories: %v", err)
	}

	openaiCfg := cfg.OpenAIConfig()
	openaiClient, err := llm.NewClient(&openaiCfg)
	if err != nil {
		logger.Fatal("Failed to build OpenAI client: %v", err)
	}
	geminiCfg := cfg.GeminiConfig()
	geminiClient, err := genai.NewClient(&geminiCfg)
	if err != nil {
		logger.Fatal("Failed to build Gemini client: %v", err)
	}
	gateway := provider.NewGateway(cfg.Providers.DefaultProvider, openaiClient, geminiClient)

	db, err := persistence.NewSQLiteStore(cfg.DatabasePath())
	if err != nil {
		logger.Fatal("Failed to open database: %v", err)
	}
	defer db.Close()

	languages := cfg.LanguageSet()
	pipe := pipeline.New(
		media.NewExtractor(store),
		transcribe.NewTranscriber(gateway, languages, store, logger),
		contextgen.NewBuilder(gateway, logger),
		translate.NewTranslator(gateway, languages, logger),
		store,
		db,
		logger,
	)

	if *videoPath != "" && !*serve {
		runOnce(pipe, cfg, *videoPath, *sourceLanguage, *targetLanguage, *providerName)
		return
	}
	if !*serve {
		flag.Usage()
		os.Exit(2)
	}

	runServer(cfg, db, store, gateway, pipe, languages, logger)
}

// runOnce drives the pipeline for a single video from the command line.
func runOnce(pipe *pipeline.Pipeline, cfg *config.Config, videoPath, sourceLanguage, targetLanguage, providerName string) {
	if targetLanguage == "" {
		fmt.Fprintln(os.Stderr, "-video requires -target")
		os.Exit(2)
	}
	if sourceLanguage == "" {
		sourceLanguage = cfg.Languages.DefaultSource
	}

	job := &jobs.PipelineJob{
		ID:     fmt.Sprintf("cli-%d", time.Now().Unix()),
		Source: "cli",
		Payload: jobs.JobPayload{
			VideoPath:      videoPath,
			SourceLanguage: sourceLanguage,
			TargetLanguage: targetLanguage,
			Provider:       providerName,
		},
	}

	result, err := pipe.Process(context.Background(), job)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(result.SubtitlePath)
}

func runServer(cfg *config.Config, db *persistence.SQLiteStore, store *storage.Manager, gateway *provider.Gateway, pipe *pipeline.Pipeline, languages language.Set, logger *log.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := jobs.NewQueue(cfg.Server.MaxConcurrentJobs, db)
	queue.Start(pipe.Executor())
	defer queue.Stop()

	var scanner *library.Scanner
	scheduler := cron.New()
	if len(cfg.Scan.MediaDirs) > 0 {
		sources := make([]library.SourceConfig, 0, len(cfg.Scan.MediaDirs))
		for _, dir := range cfg.Scan.MediaDirs {
			sources = append(sources, library.SourceConfig{
				ID:   filepath.Base(dir),
				Name: filepath.Base(dir),
				Path: dir,
			})
		}
		scanner = library.NewScanner(sources, cfg.Scan.TargetLanguage, library.WithCacheTTL(5*time.Minute))

		sweeper := service.NewSweeper(scanner, queue, cfg.Scan.MediaDirs, cfg.Languages.DefaultSource, cfg.Scan.CronExpr, scheduler, logger)
		if err := sweeper.Schedule(ctx); err != nil {
			logger.Fatal("Failed to schedule library sweep: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("Library sweep scheduled: %s over %d directories", cfg.Scan.CronExpr, len(cfg.Scan.MediaDirs))
	}

	settings := cfg.RuntimeSettings()
	settingsPath := config.RuntimeSettingsFilePath()
	if saved, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
		if verr := saved.Validate(languages); verr == nil {
			settings = saved
		} else {
			logger.Warn("Ignoring saved settings: %v", verr)
		}
	} else if !os.IsNotExist(err) {
		logger.Warn("Failed to read settings file %s: %v", settingsPath, err)
	}
	settingsStore, err := config.NewRuntimeSettingsStore(settingsPath, languages, settings)
	if err != nil {
		logger.Fatal("Failed to initialize runtime settings: %v", err)
	}
	applySettings := func(next config.RuntimeSettings) error {
		p, err := provider.Parse(next.DefaultProvider)
		if err != nil {
			return err
		}
		gateway.SetDefaultProvider(p)
		if scanner != nil {
			scanner.UpdateTargetLanguage(next.TargetLanguage)
		}
		return nil
	}
	if err := applySettings(settings); err != nil {
		logger.Fatal("Failed to apply runtime settings: %v", err)
	}

	opts := []httpapi.Option{
		httpapi.WithGateway(gateway),
		httpapi.WithRuntimeSettingsStore(settingsStore),
		httpapi.WithRuntimeSettingsApplier(applySettings),
		httpapi.WithDefaultSourceLanguage(cfg.Languages.DefaultSource),
	}
	if scanner != nil {
		opts = append(opts, httpapi.WithScanner(scanner))
	}
	server := httpapi.NewServer(queue, store, languages, opts...)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening on %s", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error: %v", err)
		}
	}
}
