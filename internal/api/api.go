package api

import (
	"context"
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/thaitourism/internal/api/controller"
	"github.com/ougirez/thaitourism/internal/pkg/logger"
	"github.com/ougirez/thaitourism/internal/service/auth"
	"github.com/ougirez/thaitourism/internal/service/insight"
	"github.com/ougirez/thaitourism/internal/service/tourism"
	"net/http"
	"time"
)

type Options struct {
	AllowOrigins   []string
	InsightTimeout time.Duration
	LogLevel       string
}

type APIService struct {
	router         *echo.Echo
	tourismService *tourism.Service
	authService    *auth.Service
}

func (svc *APIService) Serve(addr string) {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router for httptest.
func (svc *APIService) Handler() *echo.Echo {
	return svc.router
}

func NewAPIService(
	tourismService *tourism.Service,
	authService *auth.Service,
	generator insight.Generator,
	opts Options,
) (*APIService, error) {
	svc := &APIService{
		router:         echo.New(),
		tourismService: tourismService,
		authService:    authService,
	}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(echoLogLevel(opts.LogLevel))
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = &JSONSerializer{}
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(RequestIDMiddleware)
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowOrigins,                                         // Разрешить запросы только от этих доменов
		AllowMethods: []string{echo.GET, echo.POST},                             // Разрешить эти HTTP-методы
		AllowHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"}, // Разрешить эти заголовки
	}))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(tourismService, generator, insight.NewRegistry(time.Hour), opts.InsightTimeout)

	datasets := api.Group("/datasets")
	datasets.POST("/reload", cntrl.ReloadDatasets)

	regions := api.Group("/regions")
	regions.GET("/distribution", cntrl.GetRegionDistribution)

	provinces := api.Group("/provinces")
	provinces.GET("/distribution", cntrl.GetProvinceDistribution)
	provinces.GET("/top", cntrl.GetTopProvinces)
	provinces.GET("/top/:year", cntrl.GetTopProvincesInYear)
	provinces.GET("/comparison", cntrl.GetProvinceComparison)

	trends := api.Group("/trends")
	trends.GET("/yearly", cntrl.GetYearlyTrend)
	trends.GET("/forecast", cntrl.GetForecast)

	api.GET("/recovery", cntrl.GetRecovery)
	api.GET("/summary", cntrl.GetSummary)

	insights := api.Group("/insights")
	insights.POST("", cntrl.CreateInsight, svc.InsightMiddleware)
	insights.GET("/:id", cntrl.GetInsight, svc.InsightMiddleware)

	return svc, nil
}

func echoLogLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	}
	return log.INFO
}
