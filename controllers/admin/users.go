package adminController

import (
	"log"
	"time"

	"nextlevel/config"
	"nextlevel/database"
	"nextlevel/middleware"
	"nextlevel/services/account"
	"nextlevel/services/completion"
	"nextlevel/services/dashboard"
	"nextlevel/utils"
	adminValidator "nextlevel/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func accounts() *account.Service {
	return account.New(database.Database.Db, config.AppConfig.SaltRound)
}

func ListUsers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserList").(*adminValidator.UserListRequest)
	if !ok {
		return invalidRequest(c)
	}

	users, total, err := accounts().List(c.UserContext(), reqData.Status, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users.", fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

func ApproveUser(c *fiber.Ctx) error {
	user, err := accounts().Approve(c.UserContext(), c.Locals("accountId").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	utils.SendApprovalEmail(user.Email, user.Name)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User approved successfully!", user)
}

func RejectUser(c *fiber.Ctx) error {
	user, err := accounts().Reject(c.UserContext(), c.Locals("accountId").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	utils.SendRejectionEmail(user.Email, user.Name)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User rejected.", user)
}

func UpdateUser(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	reqData, ok := c.Locals("validatedUserUpdate").(*adminValidator.UpdateUserRequest)
	if !ok {
		return invalidRequest(c)
	}

	user, err := accounts().UpdateByAdmin(c.UserContext(), p, c.Locals("accountId").(uint), reqData.ToPatch())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}

// DeleteUser removes the account with its progress, attempts and certificates.
func DeleteUser(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)

	user, err := accounts().Delete(c.UserContext(), p, c.Locals("accountId").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	log.Printf("[ADMIN] user %d deleted account %d (%s)", p.UserID, user.ID, user.Email)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}

// UserProgress returns one learner's progress across every available season.
func UserProgress(c *fiber.Ctx) error {
	user, err := accounts().Get(c.UserContext(), c.Locals("accountId").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	out, err := completion.NewEvaluator(database.Database.Db).Overview(c.UserContext(), user.ID, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User progress.", fiber.Map{
		"user":     user,
		"progress": out,
	})
}

func DashboardStats(c *fiber.Ctx) error {
	stats, err := dashboard.New(database.Database.Db).Stats(c.UserContext(), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats.", stats)
}
