package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/ingest"
	"docqa/internal/pdftext"
	"docqa/internal/provider"
	"docqa/internal/server"
	"docqa/internal/service"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/docqa/config.yaml)")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})

	// Shared stateless collaborators; each session gets its own analyzer.
	extractor := pdftext.NewExtractor()
	splitter, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}
	providers, err := provider.NewCache(8)
	if err != nil {
		log.Fatalf("provider cache init failed: %v", err)
	}

	build := func() (*service.Analyzer, error) {
		bundle, err := providers.Get(context.Background(), cfg.Provider)
		if err != nil {
			return nil, err
		}
		pipe, err := ingest.NewPipeline(extractor, splitter, bundle.Embedder, cfg.Provider.BatchSize, logger)
		if err != nil {
			return nil, err
		}
		return service.New(pipe, bundle.Embedder, bundle.Synthesizer, cfg.Retrieval.TopK, cfg.History.MaxEntries, logger)
	}

	srv := server.New(time.Duration(cfg.Server.SessionTTLSecs)*time.Second, build, logger)
	if err := srv.Run(addr); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
