package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/ougirez/thaitourism/internal/pkg/logger"
	"strings"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or makes one, echoes it
// back and adds it to the request context's log fields.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Request().Header.Get(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response().Header().Set(constants.HeaderRequestID, id)
		ctx.Set(constants.CtxKeyRequestID, id)

		reqCtx := logger.WithFields(ctx.Request().Context(), constants.CtxKeyRequestID, id)
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		return next(ctx)
	}
}

// InsightMiddleware requires a valid bearer token (or secret_token cookie) when
// a secret is configured.
func (svc *APIService) InsightMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !svc.authService.Enabled() {
			return next(ctx)
		}

		raw := strings.TrimSpace(strings.TrimPrefix(ctx.Request().Header.Get(echo.HeaderAuthorization), "Bearer "))
		if raw == "" {
			cookie, err := ctx.Cookie(constants.CookieKeySecretToken)
			if err != nil {
				return constants.ErrUnauthorized
			}
			raw = cookie.Value
		}

		claims, err := svc.authService.ParseToken(raw)
		if err != nil {
			return err
		}

		ctx.Set(constants.CtxKeySubject, claims.Subject)
		return next(ctx)
	}
}
