package middleware

import (
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/config"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg))
}

// OptionalJWT validates a bearer token only when one is sent.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	conf := jwtConfig(cfg)
	conf.Filter = func(c *fiber.Ctx) bool {
		return c.Get(fiber.HeaderAuthorization) == ""
	}
	return jwtware.New(conf)
}

func jwtConfig(cfg *config.Config) jwtware.Config {
	return jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	}
}
