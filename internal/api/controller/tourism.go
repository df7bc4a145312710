package controller

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pipeline/display"
	"net/http"
)

type distributionRequest struct {
	Context string `query:"context"`
}

func (r distributionRequest) context() (display.Context, error) {
	if r.Context == "" {
		return display.ContextTourist, nil
	}
	return display.ParseContext(r.Context)
}

func (c *Controller) GetRegionDistribution(ctx echo.Context) error {
	var req distributionRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	dc, err := req.context()
	if err != nil {
		return err
	}

	rows, err := c.service.RegionDistribution(ctx.Request().Context(), dc)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetProvinceDistribution(ctx echo.Context) error {
	var req distributionRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	dc, err := req.context()
	if err != nil {
		return err
	}

	rows, err := c.service.ProvinceDistribution(ctx.Request().Context(), dc)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

type topRequest struct {
	Year     int    `param:"year"`
	Variable string `query:"variable"`
	N        int    `query:"n" validate:"lte=1000"`
}

func (r topRequest) variable() domain.Variable {
	if r.Variable == "" {
		return domain.NoTouristAll
	}
	return domain.Variable(r.Variable)
}

func (c *Controller) GetTopProvinces(ctx echo.Context) error {
	var req topRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	rows, err := c.service.TopProvinces(ctx.Request().Context(), req.variable(), req.N)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetTopProvincesInYear(ctx echo.Context) error {
	var req topRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	rows, err := c.service.TopProvincesInYear(ctx.Request().Context(), req.Year, req.variable(), req.N)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetProvinceComparison(ctx echo.Context) error {
	var req topRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	rows, err := c.service.ProvinceComparison(ctx.Request().Context(), req.N)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetYearlyTrend(ctx echo.Context) error {
	trend, err := c.service.YearlyTrend(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, trend)
}

func (c *Controller) GetForecast(ctx echo.Context) error {
	var req struct {
		Horizon int `query:"horizon" validate:"gte=0,lte=20"`
	}
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	forecast, err := c.service.Forecast(ctx.Request().Context(), req.Horizon)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, forecast)
}

func (c *Controller) GetRecovery(ctx echo.Context) error {
	var req struct {
		BaseYear   int `query:"base_year" validate:"gte=0"`
		LatestYear int `query:"latest_year" validate:"gte=0"`
	}
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	recovery, err := c.service.Recovery(ctx.Request().Context(), req.BaseYear, req.LatestYear)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, recovery)
}

func (c *Controller) GetSummary(ctx echo.Context) error {
	overview, err := c.service.Overview(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, overview)
}
