package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"textproc/internal/config"
	"textproc/internal/handler"
	"textproc/internal/nlp_client"
	"textproc/internal/processor"
	"textproc/internal/server"
	"textproc/internal/store"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "path to config file")
	demo := flag.Bool("demo", false, "run a one-shot processing demo and exit")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Optional .env for local overrides (NLP_SERVICE_URL etc.)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Open the backing store and seed it on first run
	st := store.New(cfg.Store.Path, logger)
	if err := st.Initialize(); err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}

	// Initialize NLP serving client
	nlpClient := nlp_client.NewClient(cfg.NLPService.URL, time.Duration(cfg.NLPService.TimeoutSeconds)*time.Second)

	// Initialize the processing facade
	proc := processor.NewProcessor(nlpClient, st, logger)

	// Log serving backend status; the service still starts if it is down,
	// processing calls will surface the failure per-request.
	healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if health, err := nlpClient.HealthCheck(healthCtx); err != nil {
		logger.Warn("NLP serving backend unreachable at startup", zap.Error(err))
	} else {
		logger.Info("NLP serving backend healthy",
			zap.String("status", health.Status),
			zap.String("device", health.Device))
	}
	healthCancel()

	if *demo {
		runDemo(proc, cfg, logger)
		return
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	h := handler.NewHandler(proc, st, nlpClient, logger)
	srv := server.NewServer(h, logrus.New())
	go srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}

// runDemo classifies and sentiment-analyzes a fixed set of texts, then prints
// store statistics.
func runDemo(proc *processor.Processor, cfg *config.Config, logger *zap.Logger) {
	ctx := context.Background()

	testTexts := []string{
		"The economy is growing rapidly.",
		"La economía está creciendo rápidamente.",
		"I love this new technology!",
		"¡Me encanta esta nueva tecnología!",
	}

	labels := cfg.Processing.DefaultLabels
	if len(labels) == 0 {
		labels = []string{"economy", "sports", "technology", "politics"}
	}

	fmt.Println("Multilingual Text Processing System")

	fmt.Println("\nText Classification:")
	for _, text := range testTexts {
		record, err := proc.ClassifyText(ctx, text, labels, "")
		if err != nil {
			logger.Error("Demo classification failed", zap.String("text", text), zap.Error(err))
			continue
		}
		top := record.Result.Classification[0]
		fmt.Printf("  %q -> %s (confidence: %.3f)\n", text, top.Label, top.Score)
	}

	fmt.Println("\nSentiment Analysis:")
	for _, text := range testTexts[:2] {
		record, err := proc.AnalyzeSentiment(ctx, text, "")
		if err != nil {
			logger.Error("Demo sentiment analysis failed", zap.String("text", text), zap.Error(err))
			continue
		}
		fmt.Printf("  %q -> %s (confidence: %.3f)\n", text, record.Result.Sentiment.Label, *record.Confidence)
	}

	stats, err := proc.Statistics()
	if err != nil {
		logger.Error("Demo statistics failed", zap.Error(err))
		return
	}
	fmt.Printf("\nStatistics: %d samples, %d results\n", stats.TotalSamples, stats.TotalResults)
}
