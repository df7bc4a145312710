package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ougirez/thaitourism/internal/api"
	"github.com/ougirez/thaitourism/internal/pipeline/display"
	"github.com/ougirez/thaitourism/internal/pipeline/loader"
	"github.com/ougirez/thaitourism/internal/pipeline/normalize"
	"github.com/ougirez/thaitourism/internal/pkg/config"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/ougirez/thaitourism/internal/pkg/gemini"
	"github.com/ougirez/thaitourism/internal/pkg/logger"
	"github.com/ougirez/thaitourism/internal/pkg/store"
	"github.com/ougirez/thaitourism/internal/service/auth"
	"github.com/ougirez/thaitourism/internal/service/insight"
	"github.com/ougirez/thaitourism/internal/service/tourism"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	issueToken := flag.String("issue-token", "", "print an insight token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of an issued token")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	authService := auth.NewService(cfg.Insight.Secret)
	if *issueToken != "" {
		token, err := authService.IssueToken(*issueToken, *tokenTTL)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		fmt.Println(token)
		return
	}

	policy, err := normalize.ParseDatePolicy(cfg.Pipeline.DatePolicy)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	tourismService := tourism.NewService(
		store.NewStore(),
		loader.New(
			loader.WithRetry(cfg.Data.FetchRetries, cfg.Data.FetchDelay),
		),
		normalize.New(policy, cfg.Pipeline.DateLayouts),
		display.New(display.LabelsFrom(cfg.Display.Regions, cfg.Display.Variables)),
		tourism.Options{
			Original: source(cfg.Data.Original),
			Cleansed: source(cfg.Data.Cleansed),
			BaseYear: cfg.Pipeline.BaseYear,
			TopN:     cfg.Pipeline.TopN,
			Forecast: tourism.ForecastOptions{
				Alpha:   cfg.Forecast.Alpha,
				Beta:    cfg.Forecast.Beta,
				Horizon: cfg.Forecast.Horizon,
			},
		},
	)

	// сервер поднимается и без данных, reload можно повторить через API
	if _, err := tourismService.Reload(ctx); err != nil {
		logger.Errorf(ctx, "initial dataset load: %s", err.Error())
	}

	var generator insight.Generator
	if cfg.Insight.Gemini.APIKey != "" {
		generator = gemini.New(gemini.Config{
			APIKey:   cfg.Insight.Gemini.APIKey,
			Model:    cfg.Insight.Gemini.Model,
			Endpoint: cfg.Insight.Gemini.Endpoint,
		})
	} else {
		logger.Warnf(ctx, "%s is not set, insights are disabled", constants.ViperGeminiAPIKey)
	}

	svc, err := api.NewAPIService(tourismService, authService, generator, api.Options{
		AllowOrigins:   cfg.Server.AllowOrigins,
		InsightTimeout: cfg.Insight.Timeout,
		LogLevel:       cfg.Log.Level,
	})
	if err != nil {
		logger.Fatal(ctx, err)
	}

	go svc.Serve(cfg.Server.Addr)
	logger.Infof(ctx, "listening on %s", cfg.Server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf(ctx, "shutdown: %s", err.Error())
	}
}

func source(s config.Source) loader.Source {
	return loader.Source{
		Path:     s.Path,
		URL:      s.URL,
		Format:   loader.Format(s.Format),
		Selector: s.Selector,
	}
}
