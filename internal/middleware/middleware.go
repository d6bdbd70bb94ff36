package middleware

import (
	"SkinLens/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewWebSocketTokenMiddleware(ctx *fiber.Ctx) error
	AllowRequest(clientIP string) bool
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type middleware struct {
	rateLimitter        *rateLimiter
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

// New builds the middleware set. Each client IP gets reqPerSecond requests per
// second with the given burst.
func New(logger *logrus.Logger, u utils.IUtils, reqPerSecond float64, burst int) Middleware {
	return &middleware{
		rateLimitter:        newRateLimiter(rate.Limit(reqPerSecond), burst),
		requestIDMiddleware: NewRequestIDMiddleware(u),
		log:                 logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return LoggerConfig()
}
