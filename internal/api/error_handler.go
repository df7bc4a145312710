package api

import (
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/ougirez/thaitourism/internal/pkg/logger"
	"net/http"
)

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	msg := err.Error()
	code := http.StatusInternalServerError

	var (
		codedErr *constants.CodedError
		httpErr  *echo.HTTPError
	)
	switch {
	case errors.As(err, &codedErr):
		code = codedErr.Code()
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
	}

	ctx := c.Request().Context()
	if code >= http.StatusInternalServerError {
		logger.Errorf(ctx, "%s %s: %s", c.Request().Method, c.Path(), err.Error())
	} else {
		logger.Debugf(ctx, "%s %s: %s", c.Request().Method, c.Path(), err.Error())
	}

	_ = c.JSON(code, domain.ErrorResponse{
		Message: msg,
		Code:    code,
	})
}
