package catalog

import (
	"context"
	"errors"

	"nextlevel/models/season"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
)

type ExamPatch struct {
	Title            *string
	Description      *string
	AttemptsAllowed  *int
	PassThreshold    *float64
	TimeLimitMinutes *int
	ClearTimeLimit   bool
	RevealAnswers    *bool
}

var optionLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// CreateExam attaches ex to its season. A season holds at most one exam.
func (c *Catalog) CreateExam(ctx context.Context, ex *season.Exam) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s season.Season
		if err := tx.Select("id").First(&s, ex.SeasonID).Error; err != nil {
			return notFound(err, "Season")
		}

		var n int64
		if err := tx.Unscoped().Model(&season.Exam{}).Where("season_id = ?", ex.SeasonID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.ErrExamExists
		}

		questions := ex.Questions
		ex.Questions = nil
		if err := tx.Create(ex).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.ErrExamExists, err)
			}
			return err
		}

		for i := range questions {
			questions[i].ExamID = ex.ID
			if err := createQuestion(tx, &questions[i]); err != nil {
				return err
			}
		}
		ex.Questions = questions
		return nil
	})
}

func (c *Catalog) UpdateExam(ctx context.Context, id uint, patch ExamPatch) (season.Exam, error) {
	var ex season.Exam
	if err := c.db.WithContext(ctx).First(&ex, id).Error; err != nil {
		return ex, notFound(err, "Exam")
	}

	if patch.Title != nil {
		ex.Title = *patch.Title
	}
	if patch.Description != nil {
		ex.Description = *patch.Description
	}
	if patch.AttemptsAllowed != nil {
		ex.AttemptsAllowed = *patch.AttemptsAllowed
	}
	if patch.PassThreshold != nil {
		ex.PassThreshold = *patch.PassThreshold
	}
	if patch.ClearTimeLimit {
		ex.TimeLimitMinutes = nil
	} else if patch.TimeLimitMinutes != nil {
		m := *patch.TimeLimitMinutes
		ex.TimeLimitMinutes = &m
	}
	if patch.RevealAnswers != nil {
		ex.RevealAnswers = *patch.RevealAnswers
	}

	if ex.AttemptsAllowed < 1 {
		return season.Exam{}, apperr.Invalid("An exam must allow at least one attempt!")
	}
	if ex.PassThreshold < 0 || ex.PassThreshold > 100 {
		return season.Exam{}, apperr.Invalid("Pass threshold must be between 0 and 100!")
	}

	if err := c.db.WithContext(ctx).Save(&ex).Error; err != nil {
		return season.Exam{}, err
	}
	return ex, nil
}

// AddQuestion appends q with its options to the exam.
func (c *Catalog) AddQuestion(ctx context.Context, q *season.Question) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ex season.Exam
		if err := tx.Select("id").First(&ex, q.ExamID).Error; err != nil {
			return notFound(err, "Exam")
		}
		return createQuestion(tx, q)
	})
}

func (c *Catalog) DeleteQuestion(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q season.Question
		if err := tx.First(&q, id).Error; err != nil {
			return notFound(err, "Question")
		}
		if err := tx.Unscoped().Where("question_id = ?", id).Delete(&season.Option{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&season.Question{}, id).Error
	})
}

// DeleteExam removes the exam, its questions and options, and every attempt
// and certificate recorded against it.
func (c *Catalog) DeleteExam(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ex season.Exam
		if err := tx.Select("id").First(&ex, id).Error; err != nil {
			return notFound(err, "Exam")
		}
		return deleteExam(tx, id)
	})
}

// createQuestion inserts q and its options. Missing positions follow the
// slice order and missing labels are lettered A, B, C...
func createQuestion(tx *gorm.DB, q *season.Question) error {
	options := q.Options
	q.Options = nil

	if q.OrderIndex == 0 {
		var last int
		if err := tx.Model(&season.Question{}).Where("exam_id = ?", q.ExamID).
			Select("COALESCE(MAX(order_index), 0)").Scan(&last).Error; err != nil {
			return err
		}
		q.OrderIndex = last + 1
	}
	if q.Weight <= 0 {
		q.Weight = 1
	}
	if err := tx.Create(q).Error; err != nil {
		return err
	}

	for i := range options {
		o := &options[i]
		o.QuestionID = q.ID
		if o.OrderIndex == 0 {
			o.OrderIndex = i + 1
		}
		if o.Label == "" && i < len(optionLabels) {
			o.Label = optionLabels[i]
		}
		if err := tx.Create(o).Error; err != nil {
			return err
		}
	}
	q.Options = options
	return nil
}

func deleteExam(tx *gorm.DB, examID uint) error {
	var questionIDs []uint
	if err := tx.Unscoped().Model(&season.Question{}).Where("exam_id = ?", examID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&season.Option{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("exam_id = ?", examID).Delete(&season.Question{}).Error; err != nil {
		return err
	}
	if err := tx.Where("exam_id = ?", examID).Delete(&season.Certificate{}).Error; err != nil {
		return err
	}
	if err := tx.Where("exam_id = ?", examID).Delete(&season.Attempt{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&season.Exam{}, examID).Error
}
