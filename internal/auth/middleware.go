package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tallyapp/tally/internal/model"
)

// userContextKey is the fiber locals key holding the resolved user.
const userContextKey = "auth.user"

// Middleware returns a fiber handler that requires a valid bearer token
// and stores the resolved user in the request locals.
func (s *Service) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization header",
			})
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header must be a bearer token",
			})
		}

		user, err := s.VerifyToken(c.UserContext(), tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user placed by Middleware, or nil.
func UserFromCtx(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userContextKey).(*model.User)
	return user
}
