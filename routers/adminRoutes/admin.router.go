package adminRoutes

import (
	adminControllers "nextlevel/controllers/admin"
	"nextlevel/middleware"
	"nextlevel/validators"
	adminValidators "nextlevel/validators/admin"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes registers content management, user approval and the
// dashboard. Every route requires an administrator token.
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.AdminOnly)

	// Seasons
	adminGroup.Post("/seasons", adminValidators.CreateSeason(), adminControllers.CreateSeason)
	adminGroup.Put("/seasons/order", adminValidators.Reorder(), adminControllers.ReorderSeasons)
	adminGroup.Put("/seasons/:seasonId", validators.IDParams("seasonId"), adminValidators.UpdateSeason(), adminControllers.UpdateSeason)
	adminGroup.Post("/seasons/:seasonId/duplicate", validators.IDParams("seasonId"), adminControllers.DuplicateSeason)
	adminGroup.Delete("/seasons/:seasonId", validators.IDParams("seasonId"), adminControllers.DeleteSeason)

	// Episodes
	adminGroup.Post("/seasons/:seasonId/episodes", validators.IDParams("seasonId"), adminValidators.CreateEpisode(), adminControllers.CreateEpisode)
	adminGroup.Put("/seasons/:seasonId/episodes/order", validators.IDParams("seasonId"), adminValidators.Reorder(), adminControllers.ReorderEpisodes)
	adminGroup.Put("/episodes/:episodeId", validators.IDParams("episodeId"), adminValidators.UpdateEpisode(), adminControllers.UpdateEpisode)
	adminGroup.Delete("/episodes/:episodeId", validators.IDParams("episodeId"), adminControllers.DeleteEpisode)
	adminGroup.Post("/episodes/:episodeId/attachments", validators.IDParams("episodeId"), adminValidators.CreateAttachment(), adminControllers.AddAttachment)
	adminGroup.Delete("/attachments/:attachmentId", validators.IDParams("attachmentId"), adminControllers.DeleteAttachment)

	// Exams
	adminGroup.Post("/seasons/:seasonId/exam", validators.IDParams("seasonId"), adminValidators.CreateExam(), adminControllers.CreateExam)
	adminGroup.Get("/exams/:examId", validators.IDParams("examId"), adminControllers.GetExam)
	adminGroup.Put("/exams/:examId", validators.IDParams("examId"), adminValidators.UpdateExam(), adminControllers.UpdateExam)
	adminGroup.Delete("/exams/:examId", validators.IDParams("examId"), adminControllers.DeleteExam)
	adminGroup.Post("/exams/:examId/questions", validators.IDParams("examId"), adminValidators.CreateQuestion(), adminControllers.AddQuestion)
	adminGroup.Delete("/questions/:questionId", validators.IDParams("questionId"), adminControllers.DeleteQuestion)

	// Users
	adminGroup.Get("/users", adminValidators.UserList(), adminControllers.ListUsers)
	adminGroup.Put("/users/:accountId", validators.IDParams("accountId"), adminValidators.UpdateUser(), adminControllers.UpdateUser)
	adminGroup.Delete("/users/:accountId", validators.IDParams("accountId"), adminControllers.DeleteUser)
	adminGroup.Get("/users/:accountId/progress", validators.IDParams("accountId"), adminControllers.UserProgress)
	adminGroup.Post("/users/:accountId/approve", validators.IDParams("accountId"), adminControllers.ApproveUser)
	adminGroup.Post("/users/:accountId/reject", validators.IDParams("accountId"), adminControllers.RejectUser)

	// Dashboard
	adminGroup.Get("/dashboard/stats", adminControllers.DashboardStats)
}
