package middleware

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"

	"socialapp/internal/logger"
)

// TokenValidator validates access tokens. services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// AuthRequired is a Fiber middleware to check for a valid access token.
func AuthRequired(tokens TokenValidator, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		tokenString, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			log.Debug("jwt validation failed", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// Store claims in Fiber context for subsequent handlers
		setClaims(c, claims)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	c.Locals("user_id", userID)
	c.Locals("username", username)
}

// authenticate returns the claims of a valid access token on the request,
// if there is one.
func authenticate(c *fiber.Ctx, tokens TokenValidator) (jwt.MapClaims, bool) {
	tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return nil, false
	}
	claims, err := tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}
