package controller

import (
	"github.com/labstack/echo/v4"
	"net/http"
)

func (c *Controller) ReloadDatasets(ctx echo.Context) error {
	result, err := c.service.Reload(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, result)
}
