package authRoutes

import (
	authControllers "nextlevel/controllers/auth"
	"nextlevel/middleware"
	authValidators "nextlevel/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/refresh", authValidators.Refresh(), authControllers.Refresh)
	authGroup.Post("/forgot-password", authValidators.ForgotPassword(), authControllers.ForgotPassword)
	authGroup.Post("/reset-password", authValidators.ResetPassword(), authControllers.ResetPassword)
	authGroup.Get("/me", middleware.JWTMiddleware, authControllers.Profile)
	authGroup.Get("/login/history", authValidators.LoginHistoryList(), middleware.JWTMiddleware, authControllers.LoginHistoryList)
}
