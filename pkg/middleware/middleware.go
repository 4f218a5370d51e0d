package middleware

import (
	"context"
	"net/http"

	"github.com/Astemirdum/library-borrowing/pkg/auth"
	"github.com/Astemirdum/library-borrowing/pkg/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	msgUnauthorized = "Unauthorized"
	msgInvalidToken = "Not Authorized, Invalid Token"
	msgUserNotFound = "User not found"
)

type UserChecker interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// SessionAuth accepts the jwt cookie first and falls back to a bearer header.
// A token whose revocation state cannot be read is rejected.
func SessionAuth(tokens *auth.TokenManager, revoker session.Revoker, users UserChecker, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := auth.TokenFromRequest(c.Request())
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
			}
			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
			}

			req := c.Request()
			ctx := req.Context()
			revoked, err := revoker.IsRevoked(ctx, claims.ID)
			if err != nil {
				log.Warn("revocation lookup", zap.String("jti", claims.ID), zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
			}

			ok, err := users.UserExists(ctx, claims.UserID)
			if err != nil {
				return err
			}
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUserNotFound)
			}

			c.SetRequest(req.WithContext(auth.SetAuthContext(ctx, claims)))
			return next(c)
		}
	}
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	log = log.Named("echo")
	return middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
}
