package userController

import (
	"log"

	"nextlevel/config"
	"nextlevel/database"
	"nextlevel/middleware"
	"nextlevel/services/account"
	"nextlevel/utils"
	userValidator "nextlevel/validators/user"

	"github.com/gofiber/fiber/v2"
)

func accounts() *account.Service {
	return account.New(database.Database.Db, config.AppConfig.SaltRound)
}

func UpdateProfile(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := accounts().UpdateProfile(c.UserContext(), p.UserID, account.ProfilePatch{
		Name:     reqData.Name,
		Area:     reqData.Area,
		JobTitle: reqData.JobTitle,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

// UploadAvatar stores the multipart "avatar" image and points the profile at it.
func UploadAvatar(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Avatar file is required!", nil)
	}

	relPath, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir, "avatars", utils.ImageExtensions)
	if err != nil {
		log.Printf("[UPLOAD] avatar for user %d rejected: %v", p.UserID, err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Avatar must be a PNG, JPEG or WEBP image!", nil)
	}

	url := utils.GetFileURL(relPath)
	user, err := accounts().UpdateProfile(c.UserContext(), p.UserID, account.ProfilePatch{AvatarURL: &url})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Avatar updated successfully.", user)
}

func ChangePassword(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	reqData, ok := c.Locals("validatedPassword").(*userValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := accounts().ChangePassword(c.UserContext(), p.UserID, reqData.CurrentPassword, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}
