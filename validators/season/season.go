package seasonValidator

import (
	"nextlevel/models/season"
	"nextlevel/validators"

	"github.com/gofiber/fiber/v2"
)

type ProgressRequest struct {
	ElapsedSeconds *int `json:"elapsed_seconds" validate:"required,gte=0"`
}

// SubmitExamRequest maps question ids to chosen option ids. An empty map
// is a valid (all wrong) submission.
type SubmitExamRequest struct {
	Answers        map[string]uint `json:"answers" validate:"required,dive,keys,idkey,endkeys,gt=0"`
	ElapsedSeconds *int            `json:"elapsed_seconds" validate:"omitempty,gte=0"`
}

func (r *SubmitExamRequest) AsAnswers() season.Answers {
	return season.Answers(r.Answers)
}

// UpdateProgress validates a playback position report.
func UpdateProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// SubmitExam validates an exam submission.
func SubmitExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitExamRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}
