package authValidator

import (
	"strings"

	"nextlevel/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name       string `json:"name" validate:"required,min=3,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	EmployeeID string `json:"employee_id" validate:"omitempty,max=40"`
	Area       string `json:"area" validate:"omitempty,max=120"`
	JobTitle   string `json:"job_title" validate:"omitempty,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// LoginHistoryList validates pagination of the sign-in history.
func LoginHistoryList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(validators.PageRequest)
		if ok, err := validators.Query(c, reqData); !ok {
			return err
		}
		reqData.ApplyDefaults()

		c.Locals("validatedPage", reqData)
		return c.Next()
	}
}

func Refresh() fiber.Handler {
	return validators.JSON[RefreshRequest]("validatedRefresh", nil)
}

func ForgotPassword() fiber.Handler {
	return validators.JSON("validatedForgot", func(r *ForgotPasswordRequest) {
		r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	})
}

func ResetPassword() fiber.Handler {
	return validators.JSON[ResetPasswordRequest]("validatedReset", nil)
}
