package middleware

import (
	"errors"
	"log"
	"strings"
	"time"

	"nextlevel/config"
	"nextlevel/models"
	"nextlevel/services/apperr"
	"nextlevel/services/token"

	"github.com/gofiber/fiber/v2"
)

// Tokens returns a signer built from the current configuration.
func Tokens() *token.Signer {
	cfg := config.AppConfig
	return token.NewSigner(cfg.JWTKey,
		time.Duration(cfg.JWTTTLHours)*time.Hour,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
		time.Duration(cfg.ResetTTLMinutes)*time.Minute,
	)
}

// GenerateJWT generates an access token for the user
func GenerateJWT(userID uint, role string) (string, error) {
	return Tokens().Access(userID, role)
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
	}
	tokenString := authHeader[len("Bearer "):]

	// refresh and reset tokens are not accepted here
	claims, err := Tokens().Parse(tokenString, token.TypeAccess)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	role := claims.Role
	if role == "" {
		role = models.RoleUser
	}

	c.Locals("userId", claims.UserID)
	c.Locals("role", role)
	c.Locals("principal", models.Principal{UserID: claims.UserID, Role: role})

	return c.Next()
}

// CurrentPrincipal returns the caller set by JWTMiddleware.
func CurrentPrincipal(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals("principal").(models.Principal)
	return p, ok
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse writes err using the status its kind maps to. Errors that
// are not *apperr.Error are logged and reported as 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind == apperr.KindInternal {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.OriginalURL(), err)
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong, please try again!", nil)
	}
	return JsonResponse(c, StatusFor(ae.Kind), false, ae.Message, fiber.Map{"code": ae.Code})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindPrecondition:
		return fiber.StatusPreconditionFailed
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindInvalid:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
