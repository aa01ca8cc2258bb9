package routers

import (
	"errors"
	"time"

	"nextlevel/middleware"
	adminRoutes "nextlevel/routers/adminRoutes"
	authRoutes "nextlevel/routers/authRoutes"
	seasonRoutes "nextlevel/routers/seasonRoutes"
	userRoutes "nextlevel/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the HTTP application with its middleware and every route.
// requestTimeout bounds the context handed to services and uploads are
// served from uploadDir.
func NewApp(requestTimeout time.Duration, uploadDir string) *fiber.App {
	app := fiber.New(fiber.Config{
		ProxyHeader:  fiber.HeaderXForwardedFor,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE",
		AllowHeaders:  "Content-Type,Authorization,X-Request-ID",
		ExposeHeaders: "Content-Disposition,X-Request-ID",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(middleware.RequestContext(requestTimeout))

	app.Static("/uploads", uploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	seasonRoutes.SetupSeasonRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	return app
}

// errorHandler keeps the JSON envelope for errors fiber raises itself, such
// as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return middleware.JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return middleware.ErrorResponse(c, err)
}
