package examController

import (
	"fmt"
	"log"

	"nextlevel/config"
	"nextlevel/database"
	"nextlevel/middleware"
	"nextlevel/models"
	"nextlevel/services/account"
	"nextlevel/services/apperr"
	"nextlevel/services/catalog"
	"nextlevel/services/certification"
	"nextlevel/services/exam"
	"nextlevel/services/ledger"
	"nextlevel/utils"
	seasonValidator "nextlevel/validators/season"

	"github.com/gofiber/fiber/v2"
)

// Renderer produces certificate documents. Tests replace it.
var Renderer certification.Renderer

func renderer() certification.Renderer {
	if Renderer != nil {
		return Renderer
	}
	return utils.NewCertificateRenderer(config.AppConfig.CertificateRendererURL)
}

// SeasonExamStatus reports whether the caller may attempt the season's exam
// and what is left of their attempts.
func SeasonExamStatus(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	seasonID := c.Locals("seasonId").(uint)
	ctx := c.UserContext()

	if _, err := catalog.New(database.Database.Db, nil).GetSeason(ctx, p, seasonID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	st, err := certification.New(database.Database.Db, nil).Status(ctx, p, seasonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam status.", st)
}

// GetExam returns the exam without answer keys.
func GetExam(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	examID := c.Locals("examId").(uint)
	ctx := c.UserContext()

	view, err := exam.NewEngine(database.Database.Db).View(ctx, p, examID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if _, err := catalog.New(database.Database.Db, nil).GetSeason(ctx, p, view.SeasonID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam details.", view)
}

func SubmitExam(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	examID := c.Locals("examId").(uint)
	reqData, ok := c.Locals("validatedSubmission").(*seasonValidator.SubmitExamRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	ctx := c.UserContext()

	// learners who passed are not offered a retake
	if !p.IsAdmin() {
		ex, err := exam.Load(database.Database.Db.WithContext(ctx), examID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if _, err := catalog.New(database.Database.Db, nil).GetSeason(ctx, p, ex.SeasonID); err != nil {
			return middleware.ErrorResponse(c, err)
		}
		st, err := certification.New(database.Database.Db, nil).ForExam(ctx, p, ex)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if st.ExamUnlocked && st.AlreadyCertified {
			return middleware.ErrorResponse(c, apperr.ErrAlreadyCertified)
		}
	}

	res, err := exam.NewEngine(database.Database.Db).Submit(ctx, p, examID, reqData.AsAnswers(), reqData.ElapsedSeconds)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if res.FirstPass {
		notifyFirstPass(c, p, examID, res.ScorePercent)
	}

	message := "Exam not passed."
	if res.Passed {
		message = "Exam passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, res)
}

func notifyFirstPass(c *fiber.Ctx, p models.Principal, examID uint, score float64) {
	user, err := account.New(database.Database.Db, config.AppConfig.SaltRound).Get(c.UserContext(), p.UserID)
	if err != nil {
		log.Printf("[EXAM] certificate email skipped for user %d: %v", p.UserID, err)
		return
	}
	ex, err := exam.Load(database.Database.Db.WithContext(c.UserContext()), examID)
	if err != nil {
		log.Printf("[EXAM] certificate email skipped for exam %d: %v", examID, err)
		return
	}
	utils.SendCertificateEarnedEmail(user.Email, user.Name, ex.Title, score)
}

// AttemptHistory lists the caller's attempts at the exam, newest first.
func AttemptHistory(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	examID := c.Locals("examId").(uint)
	ctx := c.UserContext()

	if _, err := exam.Load(database.Database.Db.WithContext(ctx), examID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	attempts, err := ledger.New(database.Database.Db).History(ctx, p.UserID, examID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt history.", attempts)
}

// DownloadCertificate renders the certificate of a passing attempt as a PDF.
func DownloadCertificate(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	examID := c.Locals("examId").(uint)
	attemptID := c.Locals("attemptId").(uint)

	doc, err := certification.New(database.Database.Db, renderer()).Issue(c.UserContext(), p, examID, attemptID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Status(fiber.StatusOK).Send(doc.Content)
}
