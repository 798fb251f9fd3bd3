package main

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/stwalsh4118/taxappeal/internal/cli"
	"github.com/stwalsh4118/taxappeal/internal/config"
	"github.com/stwalsh4118/taxappeal/internal/dataset"
	"github.com/stwalsh4118/taxappeal/internal/extract"
	"github.com/stwalsh4118/taxappeal/internal/logger"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout carries only the petition or JSON
	log := logger.NewWithWriter(cfg.Server.Env, os.Stderr)

	os.Exit(cli.Execute(cli.Deps{
		Out:    os.Stdout,
		Log:    log,
		Config: cfg,
		LoadBundle: func(dir string, years []int) (*dataset.Bundle, error) {
			return dataset.Load(dir, years, log.WithComponent("dataset"))
		},
		Extractor: extract.NewExtractor(
			extract.FitzRasterizer{},
			extract.TesseractRecognizer{Language: cfg.OCR.Language},
			extract.Options{DPI: cfg.OCR.DPI, MaxPages: cfg.OCR.MaxPages},
			log.WithComponent("extract"),
		),
		Clock: clockwork.NewRealClock(),
	}))
}
