package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/ingest"
	"docqa/internal/pdftext"
	"docqa/internal/provider"
	"docqa/internal/service"
	"docqa/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/docqa/config.yaml)")
	flag.Parse()
	args := flag.Args()
	if len(args) > 1 {
		fmt.Println("Usage: docqa [--config=config.yaml] [document.pdf]")
		os.Exit(1)
	}
	var docPath string
	if len(args) == 1 {
		docPath = args[0]
	}

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

	ctx := context.Background()

	// Assemble components. The TUI owns the terminal, so component logs
	// are discarded.
	logger := log.New(io.Discard)

	bundle, err := provider.New(ctx, cfg.Provider)
	if err != nil {
		log.Fatalf("provider init failed: %v", err)
	}
	splitter, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}
	pipe, err := ingest.NewPipeline(pdftext.NewExtractor(), splitter, bundle.Embedder, cfg.Provider.BatchSize, logger)
	if err != nil {
		log.Fatalf("pipeline init failed: %v", err)
	}
	analyzer, err := service.New(pipe, bundle.Embedder, bundle.Synthesizer, cfg.Retrieval.TopK, cfg.History.MaxEntries, logger)
	if err != nil {
		log.Fatalf("service init failed: %v", err)
	}

	m := tui.New(ctx, analyzer, docPath)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
