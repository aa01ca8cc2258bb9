package seasonRoutes

import (
	examControllers "nextlevel/controllers/exam"
	seasonControllers "nextlevel/controllers/season"
	"nextlevel/middleware"
	"nextlevel/validators"
	seasonValidators "nextlevel/validators/season"

	"github.com/gofiber/fiber/v2"
)

// SetupSeasonRoutes registers the learner facing routes: seasons, episodes,
// progress and exams.
func SetupSeasonRoutes(app *fiber.App) {
	seasonGroup := app.Group("/seasons", middleware.JWTMiddleware)
	seasonGroup.Get("/", seasonControllers.ListSeasons)
	seasonGroup.Get("/:seasonId", validators.IDParams("seasonId"), seasonControllers.GetSeason)
	seasonGroup.Get("/:seasonId/episodes", validators.IDParams("seasonId"), seasonControllers.ListEpisodes)
	seasonGroup.Get("/:seasonId/progress", validators.IDParams("seasonId"), seasonControllers.SeasonProgress)
	seasonGroup.Get("/:seasonId/exam", validators.IDParams("seasonId"), examControllers.SeasonExamStatus)

	episodeGroup := app.Group("/episodes", middleware.JWTMiddleware)
	episodeGroup.Get("/:episodeId", validators.IDParams("episodeId"), seasonControllers.GetEpisode)
	episodeGroup.Put("/:episodeId/progress", validators.IDParams("episodeId"), seasonValidators.UpdateProgress(), seasonControllers.UpdateProgress)
	episodeGroup.Post("/:episodeId/watched", validators.IDParams("episodeId"), seasonControllers.MarkWatched)

	app.Get("/progress", middleware.JWTMiddleware, seasonControllers.Overview)

	examGroup := app.Group("/exams", middleware.JWTMiddleware)
	examGroup.Get("/:examId", validators.IDParams("examId"), examControllers.GetExam)
	examGroup.Post("/:examId/submit", validators.IDParams("examId"), seasonValidators.SubmitExam(), examControllers.SubmitExam)
	examGroup.Get("/:examId/attempts", validators.IDParams("examId"), examControllers.AttemptHistory)
	examGroup.Get("/:examId/attempts/:attemptId/certificate", validators.IDParams("examId", "attemptId"), examControllers.DownloadCertificate)
}
