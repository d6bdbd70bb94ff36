package skinHandler

import (
	skinService "SkinLens/internal/api/skin/service"
	"SkinLens/internal/middleware"
	"SkinLens/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type SkinHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	skinService skinService.ISkinService
	utils       utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ss skinService.ISkinService,
	utils utils.IUtils,
) *SkinHandler {
	return &SkinHandler{
		skinService: ss,
		log:         log,
		validator:   validator,
		middleware:  middleware,
		utils:       utils,
	}
}

func (h *SkinHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals(clientIPKey, c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	skin := srv.Group("/skin")

	skin.Post("/analyze", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.AnalyzeSkin)
	skin.Post("/derive", h.DeriveReport)

	skin.Get("/history", h.middleware.NewTokenMiddleware, h.GetHistory)
	skin.Get("/history/:id", h.middleware.NewTokenMiddleware, h.GetAnalysis)
	skin.Delete("/history/:id", h.middleware.NewTokenMiddleware, h.DeleteAnalysis)

	skin.Post("/advice/:id", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.GeneratePersonalAdvice)

	skin.Use("/ws", h.middleware.NewRateLimiter, wsMiddleware, h.middleware.NewWebSocketTokenMiddleware)
	skin.Get("/ws", websocket.New(h.handleWebSocket, websocket.Config{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 16 * 1024,
	}))
}
