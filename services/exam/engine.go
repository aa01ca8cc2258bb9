// Package exam holds exam definitions and grades submissions.
package exam

import (
	"context"
	"errors"
	"log"

	"nextlevel/models"
	"nextlevel/models/season"
	"nextlevel/services/apperr"
	"nextlevel/services/certification"
	"nextlevel/services/completion"
	"nextlevel/services/ledger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Result struct {
	AttemptID     uint    `json:"attempt_id"`
	ScorePercent  float64 `json:"score_percent"`
	Passed        bool    `json:"passed"`
	AttemptNumber int     `json:"attempt_number"`
	Correct       int     `json:"correct"`
	Wrong         int     `json:"wrong"`
	// FirstPass is set when this attempt is the user's first passing one.
	FirstPass bool               `json:"-"`
	Questions []QuestionFeedback `json:"questions_feedback,omitempty"`
}

type OptionView struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type QuestionView struct {
	ID         uint         `json:"id"`
	Prompt     string       `json:"prompt"`
	OrderIndex int          `json:"order_index"`
	Weight     int          `json:"weight"`
	Options    []OptionView `json:"options"`
}

// View is the exam as shown before an attempt: no correct flags, no feedback.
type View struct {
	ID                uint           `json:"id"`
	SeasonID          uint           `json:"season_id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	AttemptsAllowed   int            `json:"attempts_allowed"`
	PassThreshold     float64        `json:"pass_threshold"`
	TimeLimitMinutes  *int           `json:"time_limit_minutes"`
	RevealAnswers     bool           `json:"reveal_answers"`
	Questions         []QuestionView `json:"questions"`
	TotalQuestions    int            `json:"total_questions"`
	AttemptsRemaining int            `json:"attempts_remaining"`
	Blocked           bool           `json:"blocked"`
	BlockReason       string         `json:"block_reason,omitempty"`
}

type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Load fetches an exam with its questions and options in position order.
func Load(db *gorm.DB, examID uint) (season.Exam, error) {
	var ex season.Exam
	err := db.
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("Questions.Options", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		First(&ex, examID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ex, apperr.NotFound("Exam")
	}
	return ex, err
}

// Submit grades answers for p and records the attempt. The gate check, the
// attempt count and the insert share one transaction, and the attempt is
// committed before the result is returned.
func (e *Engine) Submit(ctx context.Context, p models.Principal, examID uint, answers season.Answers, elapsedSeconds *int) (Result, error) {
	if answers == nil {
		answers = season.Answers{}
	}

	var res Result
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ex, err := Load(tx, examID)
		if err != nil {
			return err
		}

		if !p.IsAdmin() {
			unlocked, err := completion.NewEvaluator(tx).IsExamUnlocked(ctx, p, ex.SeasonID)
			if err != nil {
				return err
			}
			if !unlocked {
				return apperr.ErrExamLocked
			}
		}

		l := ledger.New(tx)
		prior, err := l.CountAttempts(ctx, p.UserID, ex.ID)
		if err != nil {
			return err
		}
		if prior >= ex.AttemptsAllowed {
			return apperr.ErrAttemptsExhausted
		}
		previousPass, err := l.BestOrLatest(ctx, p.UserID, ex.ID)
		if err != nil {
			return err
		}

		outcome := Score(ex, answers)
		attempt := season.Attempt{
			UserID:         p.UserID,
			ExamID:         ex.ID,
			AttemptNumber:  prior + 1,
			Answers:        datatypes.NewJSONType(answers),
			Score:          outcome.Score,
			Passed:         outcome.Passed,
			ElapsedSeconds: elapsedSeconds,
		}
		if err := l.Append(ctx, &attempt); err != nil {
			return err
		}

		res = Result{
			AttemptID:     attempt.ID,
			ScorePercent:  attempt.Score,
			Passed:        attempt.Passed,
			AttemptNumber: attempt.AttemptNumber,
			Correct:       outcome.Correct,
			Wrong:         outcome.Wrong,
			FirstPass:     attempt.Passed && previousPass == nil,
		}
		if ex.RevealAnswers {
			res.Questions = outcome.Questions
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Printf("[EXAM] user=%d exam=%d attempt=%d score=%.2f passed=%t", p.UserID, examID, res.AttemptNumber, res.ScorePercent, res.Passed)
	return res, nil
}

// View returns the exam for answering together with whether p may attempt it.
func (e *Engine) View(ctx context.Context, p models.Principal, examID uint) (View, error) {
	ex, err := Load(e.db.WithContext(ctx), examID)
	if err != nil {
		return View{}, err
	}

	st, err := certification.New(e.db, nil).ForExam(ctx, p, ex)
	if err != nil {
		return View{}, err
	}

	v := View{
		ID:                ex.ID,
		SeasonID:          ex.SeasonID,
		Title:             ex.Title,
		Description:       ex.Description,
		AttemptsAllowed:   ex.AttemptsAllowed,
		PassThreshold:     ex.PassThreshold,
		TimeLimitMinutes:  ex.TimeLimitMinutes,
		RevealAnswers:     ex.RevealAnswers,
		Questions:         make([]QuestionView, len(ex.Questions)),
		TotalQuestions:    len(ex.Questions),
		AttemptsRemaining: st.AttemptsRemaining,
		Blocked:           st.AccessBlocked,
		BlockReason:       st.BlockReason,
	}
	for i, q := range ex.Questions {
		qv := QuestionView{ID: q.ID, Prompt: q.Prompt, OrderIndex: q.OrderIndex, Weight: q.Weight, Options: make([]OptionView, len(q.Options))}
		for j, o := range q.Options {
			qv.Options[j] = OptionView{ID: o.ID, Label: o.Label, Text: o.Text}
		}
		v.Questions[i] = qv
	}
	return v, nil
}
