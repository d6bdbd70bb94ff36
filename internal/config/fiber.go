package config

import (
	"SkinLens/internal/middleware"
	"SkinLens/pkg/handlerUtil"
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func NewFiber(logger *logrus.Logger) *fiber.App {
	errHandler := handlerUtil.New(logger)

	app := fiber.New(
		fiber.Config{
			AppName:           "SkinLens",
			BodyLimit:         8 * 1024 * 1024,
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: false,
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				var fiberErr *fiber.Error
				if errors.As(err, &fiberErr) {
					return c.Status(fiberErr.Code).JSON(handlerUtil.ErrorResponse{Error: fiberErr.Message})
				}
				requestID, _ := c.Locals(middleware.RequestIDKey).(string)
				return errHandler.Handle(c, requestID, err, c.Path(), "unhandled")
			},
		})

	return app
}
