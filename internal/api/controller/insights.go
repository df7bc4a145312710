package controller

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/thaitourism/internal/domain/dto"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/ougirez/thaitourism/internal/service/insight"
	"net/http"
	"time"
)

// CreateInsight dispatches generation and waits up to the configured timeout.
// A finished task answers 200, a running one 202 with the id to poll.
func (c *Controller) CreateInsight(ctx echo.Context) error {
	if c.generator == nil {
		return constants.ErrInsightDisabled
	}

	var req dto.InsightRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	prompt, err := c.service.InsightPrompt(ctx.Request().Context(), req.Question)
	if err != nil {
		return err
	}

	task := insight.Dispatch(ctx.Request().Context(), c.generator, prompt)
	c.insights.Add(task)

	res, err := c.insights.Poll(task.ID(), c.insightTimeout)
	if err != nil {
		return err
	}
	return respondInsight(ctx, res)
}

// GetInsight polls a task, waiting up to ?wait= (a Go duration) for it.
func (c *Controller) GetInsight(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return fmt.Errorf("insight id: %s: %w", err.Error(), constants.ErrBadRequest)
	}

	var wait time.Duration
	if raw := ctx.QueryParam("wait"); raw != "" {
		wait, err = time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("wait: %s: %w", err.Error(), constants.ErrBadRequest)
		}
		if wait > c.insightTimeout {
			wait = c.insightTimeout
		}
	}

	res, err := c.insights.Poll(id, wait)
	if err != nil {
		return err
	}
	return respondInsight(ctx, res)
}

func respondInsight(ctx echo.Context, res insight.Result) error {
	resp := dto.InsightResponse{
		ID:     res.ID.String(),
		Status: string(res.Status),
		Text:   res.Text,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}

	code := http.StatusOK
	if res.Status == insight.StatusRunning {
		code = http.StatusAccepted
	}
	return ctx.JSON(code, resp)
}
