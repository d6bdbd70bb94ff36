package middleware

import (
	"SkinLens/internal/entity"
	jwtPkg "SkinLens/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	unauthorizedMessage = "Unauthorized, access token invalid or expired"
	accessTokenQuery    = "access_token"
)

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	fields := logrus.Fields{
		"request_id": m.GetRequestID(ctx),
		"path":       ctx.Path(),
		"method":     ctx.Method(),
		"client_ip":  ctx.IP(),
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, jwtPkg.AccessTokenSecret)
	if err != nil {
		fields["error"] = err.Error()
		m.log.WithFields(fields).Warn("Token verification failed")
		return unauthorized(ctx)
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithFields(fields).Warn("Invalid token claims")
		return unauthorized(ctx)
	}

	user, ok := userFromClaims(claims)
	if !ok {
		m.log.WithFields(fields).Warn("Token claims are missing required fields")
		return unauthorized(ctx)
	}
	ctx.Locals("user", user)

	fields["user_id"] = user.ID
	m.log.WithFields(fields).Debug("Authentication successful")
	return ctx.Next()
}

// NewWebSocketTokenMiddleware also accepts the token as an access_token query
// parameter, since browsers cannot set headers on a WebSocket handshake.
func (m *middleware) NewWebSocketTokenMiddleware(ctx *fiber.Ctx) error {
	if ctx.Get(fiber.HeaderAuthorization) == "" {
		if token := ctx.Query(accessTokenQuery); token != "" {
			ctx.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}

	return m.NewTokenMiddleware(ctx)
}

func userFromClaims(claims jwt.MapClaims) (entity.UserLoginData, bool) {
	id, okID := claims["id"].(string)
	email, okEmail := claims["email"].(string)
	username, okUsername := claims["username"].(string)
	if !okID || !okEmail || !okUsername || id == "" {
		return entity.UserLoginData{}, false
	}

	return entity.UserLoginData{
		ID:       id,
		Email:    email,
		Username: username,
	}, true
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": unauthorizedMessage,
	})
}
