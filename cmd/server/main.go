package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lubritrack/label-engine/internal/api"
	"github.com/lubritrack/label-engine/internal/composer"
	"github.com/lubritrack/label-engine/internal/config"
	"github.com/lubritrack/label-engine/internal/logging"
	"github.com/lubritrack/label-engine/internal/pdf"
	"github.com/lubritrack/label-engine/internal/printer"
	"github.com/lubritrack/label-engine/internal/store"
)

// Version is set during build via ldflags
var Version = "dev"

const maxPrintRetries = 3

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("label-engine", "info")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New("label-engine", cfg.LogLevel)
	log.Info().Str("version", Version).Msg("label engine starting")

	var provider composer.BitmapProvider
	if cfg.QRProvider == "http" {
		provider = composer.NewHTTPProvider(cfg.QRServiceURL)
		log.Info().Str("url", cfg.QRServiceURL).Msg("using external QR service")
	} else {
		provider = composer.NewLocalProvider()
	}

	comp := composer.New(provider, cfg.PublicOrigin)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open configuration store")
	}

	cache, err := store.NewPresetCache(cfg.PresetCachePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open preset cache")
	}

	var queue *printer.Queue
	if cfg.PrinterHost != "" {
		queue = printer.NewQueue(printer.Target{
			Host: cfg.PrinterHost,
			Port: cfg.PrinterPort,
		}, maxPrintRetries, log)
		defer queue.Stop()
		log.Info().Str("host", cfg.PrinterHost).Int("port", cfg.PrinterPort).Msg("thermal printer configured")
	}

	server := api.NewServer(api.Options{
		Composer: comp,
		Store:    st,
		Cache:    cache,
		PDF:      pdf.NewRenderer(cfg.ChromePath),
		Queue:    queue,
		Log:      log,
	}, logging.RequestLogger(log))

	if queue != nil {
		queue.OnJobUpdate = func(job printer.Job) {
			server.BroadcastJobUpdate(job)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("api server listening")
		errChan <- server.Run(cfg.Addr())
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatal().Err(err).Msg("server error")
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}
}
