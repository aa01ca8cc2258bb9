package adminController

import (
	"nextlevel/database"
	"nextlevel/middleware"
	"nextlevel/services/catalog"
	"nextlevel/services/exam"
	"nextlevel/utils"
	adminValidator "nextlevel/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func content() *catalog.Catalog {
	return catalog.New(database.Database.Db, utils.ConfiguredStorage())
}

func invalidRequest(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
}

// ============ Seasons ============

func CreateSeason(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSeason").(*adminValidator.CreateSeasonRequest)
	if !ok {
		return invalidRequest(c)
	}

	s := reqData.ToModel()
	if err := content().CreateSeason(c.UserContext(), &s); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Season created successfully!", s)
}

func UpdateSeason(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSeasonUpdate").(*adminValidator.UpdateSeasonRequest)
	if !ok {
		return invalidRequest(c)
	}

	s, err := content().UpdateSeason(c.UserContext(), c.Locals("seasonId").(uint), reqData.ToPatch())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Season updated successfully!", s)
}

func ReorderSeasons(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedOrder").(*adminValidator.ReorderRequest)
	if !ok {
		return invalidRequest(c)
	}

	if err := content().ReorderSeasons(c.UserContext(), reqData.IDs); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Seasons reordered successfully!", nil)
}

func DuplicateSeason(c *fiber.Ctx) error {
	s, err := content().DuplicateSeason(c.UserContext(), c.Locals("seasonId").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Season duplicated successfully!", s)
}

// DeleteSeason removes the season with its episodes, exam and attempts.
func DeleteSeason(c *fiber.Ctx) error {
	if err := content().DeleteSeason(c.UserContext(), c.Locals("seasonId").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Season deleted successfully!", nil)
}

// ============ Episodes ============

func CreateEpisode(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEpisode").(*adminValidator.CreateEpisodeRequest)
	if !ok {
		return invalidRequest(c)
	}

	ep := reqData.ToModel(c.Locals("seasonId").(uint))
	if err := content().CreateEpisode(c.UserContext(), &ep); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Episode created successfully!", ep)
}

func UpdateEpisode(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEpisodeUpdate").(*adminValidator.UpdateEpisodeRequest)
	if !ok {
		return invalidRequest(c)
	}

	ep, err := content().UpdateEpisode(c.UserContext(), c.Locals("episodeId").(uint), reqData.ToPatch())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Episode updated successfully!", ep)
}

func ReorderEpisodes(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedOrder").(*adminValidator.ReorderRequest)
	if !ok {
		return invalidRequest(c)
	}

	if err := content().ReorderEpisodes(c.UserContext(), c.Locals("seasonId").(uint), reqData.IDs); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Episodes reordered successfully!", nil)
}

func DeleteEpisode(c *fiber.Ctx) error {
	if err := content().DeleteEpisode(c.UserContext(), c.Locals("episodeId").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Episode deleted successfully!", nil)
}

func AddAttachment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAttachment").(*adminValidator.AttachmentRequest)
	if !ok {
		return invalidRequest(c)
	}

	a := reqData.ToModel(c.Locals("episodeId").(uint))
	if err := content().AddAttachment(c.UserContext(), &a); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attachment added successfully!", a)
}

func DeleteAttachment(c *fiber.Ctx) error {
	if err := content().DeleteAttachment(c.UserContext(), c.Locals("attachmentId").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attachment deleted successfully!", nil)
}

// ============ Exams ============

func CreateExam(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedExam").(*adminValidator.CreateExamRequest)
	if !ok {
		return invalidRequest(c)
	}

	ex := reqData.ToModel(c.Locals("seasonId").(uint))
	if err := content().CreateExam(c.UserContext(), &ex); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created successfully!", ex)
}

// GetExam returns the full exam, answer keys included.
func GetExam(c *fiber.Ctx) error {
	ex, err := exam.Load(database.Database.Db.WithContext(c.UserContext()), c.Locals("examId").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam details.", ex)
}

func UpdateExam(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedExamUpdate").(*adminValidator.UpdateExamRequest)
	if !ok {
		return invalidRequest(c)
	}

	ex, err := content().UpdateExam(c.UserContext(), c.Locals("examId").(uint), reqData.ToPatch())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam updated successfully!", ex)
}

func DeleteExam(c *fiber.Ctx) error {
	if err := content().DeleteExam(c.UserContext(), c.Locals("examId").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam deleted successfully!", nil)
}

func AddQuestion(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedQuestion").(*adminValidator.QuestionRequest)
	if !ok {
		return invalidRequest(c)
	}

	q := reqData.ToModel(c.Locals("examId").(uint))
	if err := content().AddQuestion(c.UserContext(), &q); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", q)
}

func DeleteQuestion(c *fiber.Ctx) error {
	if err := content().DeleteQuestion(c.UserContext(), c.Locals("questionId").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}
