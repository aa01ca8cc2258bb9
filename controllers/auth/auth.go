package authController

import (
	"errors"
	"log"

	"nextlevel/config"
	"nextlevel/database"
	"nextlevel/middleware"
	"nextlevel/models"
	"nextlevel/services/account"
	"nextlevel/services/apperr"
	"nextlevel/utils"
	"nextlevel/validators"
	authValidator "nextlevel/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func accounts() *account.Service {
	return account.New(database.Database.Db, config.AppConfig.SaltRound).WithTokens(middleware.Tokens())
}

// Signup registers a learner. The account stays PENDING until an
// administrator approves it.
func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := accounts().Signup(c.UserContext(), account.SignupInput{
		Name:       reqData.Name,
		Email:      reqData.Email,
		Password:   reqData.Password,
		EmployeeID: reqData.EmployeeID,
		Area:       reqData.Area,
		JobTitle:   reqData.JobTitle,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	utils.SendWelcomeEmail(user.Email, user.Name)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Signup successful! Your account is waiting for approval.", user)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}

	user, err := accounts().Login(c.UserContext(), reqData.Email, reqData.Password, account.Client{
		IP:     ip,
		Device: c.Get("User-Agent"),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	pair, err := accounts().IssueTokens(user)
	if err != nil {
		log.Printf("[AUTH] failed to sign token for user %d: %v", user.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":          user,
		"token":         pair.Token,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh trades a refresh token for a new token pair.
func Refresh(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRefresh").(*authValidator.RefreshRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, pair, err := accounts().Refresh(c.UserContext(), reqData.RefreshToken)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Token refreshed.", fiber.Map{
		"user":          user,
		"token":         pair.Token,
		"refresh_token": pair.RefreshToken,
	})
}

const forgotPasswordMessage = "If the email is registered, you will receive a link to reset your password."

// ForgotPassword mails a reset link. The answer is the same whether or not
// the address belongs to an account.
func ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgot").(*authValidator.ForgotPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, token, err := accounts().PasswordResetToken(c.UserContext(), reqData.Email)
	switch {
	case err == nil:
		utils.SendPasswordResetEmail(user.Email, user.Name, token)
	case errors.Is(err, apperr.ErrNotFound):
	default:
		log.Printf("[AUTH] password reset for %s failed: %v", reqData.Email, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, forgotPasswordMessage, nil)
}

func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedReset").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := accounts().ResetPassword(c.UserContext(), reqData.Token, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully!", nil)
}

// Profile returns the signed-in user.
func Profile(c *fiber.Ctx) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	user, err := accounts().Get(c.UserContext(), p.UserID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile.", user)
}

func LoginHistoryList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedPage").(*validators.PageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (reqData.Page - 1) * reqData.Limit

	var history []models.LoginTracking
	var total int64

	db := database.Database.Db.WithContext(c.UserContext())
	if err := db.Where("user_id = ?", userId).
		Order("timestamp desc").
		Offset(offset).
		Limit(reqData.Limit).
		Find(&history).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := db.Model(&models.LoginTracking{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}
