package userValidator

import (
	"nextlevel/validators"

	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=3,max=120"`
	Area     *string `json:"area" validate:"omitempty,max=120"`
	JobTitle *string `json:"job_title" validate:"omitempty,max=120"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	CnfPassword     string `json:"cnf_password" validate:"required,eqfield=NewPassword"`
}

func UpdateProfile() fiber.Handler {
	return validators.JSON[UpdateProfileRequest]("validatedProfile", nil)
}

func ChangePassword() fiber.Handler {
	return validators.JSON[ChangePasswordRequest]("validatedPassword", nil)
}
