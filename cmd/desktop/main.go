package main

import (
	"context"
	"log"
	"net/http"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/desktop"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/platform"
	"github.com/dalfonso89/currency-converter/internal/service"
)

const appID = "io.github.dalfonso89.currencyconverter"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	apiURL, err := cfg.RatesURL()
	if err != nil {
		log.Fatalf("Invalid rates API configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)

	converterService := service.NewConverterService(service.ServiceConfig{
		HTTPClient: &http.Client{Timeout: cfg.Rates.HTTPTimeout},
		APIURL:     apiURL,
		Logger:     appLogger,
	})

	worker := service.NewRefreshWorker(converterService, appLogger)
	defer worker.Stop()

	converterApp := app.NewWithID(appID)
	view := desktop.NewView(converterApp, converterService, worker, cfg.Desktop.DarkMode, appLogger)

	if cfg.Rates.RefreshOnStart {
		view.Start()
	}

	stopSignals := platform.OnShutdown(context.Background(), func() {
		appLogger.Info("Shutdown signal received, closing window")
		fyne.Do(converterApp.Quit)
	})
	defer stopSignals()

	appLogger.Info("Starting desktop shell")
	view.Window().ShowAndRun()
	appLogger.Info("Desktop shell exited")
}
