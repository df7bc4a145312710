package controller

import (
	"github.com/ougirez/thaitourism/internal/service/insight"
	"github.com/ougirez/thaitourism/internal/service/tourism"
	"time"
)

type Controller struct {
	service        *tourism.Service
	generator      insight.Generator
	insights       *insight.Registry
	insightTimeout time.Duration
}

func NewController(
	service *tourism.Service,
	generator insight.Generator,
	insights *insight.Registry,
	insightTimeout time.Duration,
) *Controller {
	return &Controller{
		service:        service,
		generator:      generator,
		insights:       insights,
		insightTimeout: insightTimeout,
	}
}
