package userRoutes

import (
	userControllers "nextlevel/controllers/user"
	"nextlevel/middleware"
	userValidators "nextlevel/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware)

	userGroup.Put("/profile", userValidators.UpdateProfile(), userControllers.UpdateProfile)
	userGroup.Post("/avatar", userControllers.UploadAvatar)
	userGroup.Put("/change/password", userValidators.ChangePassword(), userControllers.ChangePassword)
}
