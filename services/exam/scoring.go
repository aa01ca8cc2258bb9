package exam

import (
	"math"
	"sort"

	"nextlevel/models/season"
)

type OptionFeedback struct {
	ID        uint   `json:"id"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

type QuestionFeedback struct {
	QuestionID     uint             `json:"question_id"`
	Prompt         string           `json:"prompt"`
	OrderIndex     int              `json:"order_index"`
	Weight         int              `json:"weight"`
	Options        []OptionFeedback `json:"options"`
	ChosenOptionID *uint            `json:"chosen_option_id"`
	Correct        bool             `json:"correct"`
}

// Outcome is the result of grading one answer map against an exam.
type Outcome struct {
	TotalWeight  int
	EarnedWeight int
	// RawPercent is unrounded and is what the pass threshold is compared to.
	RawPercent float64
	Score      float64
	Passed     bool
	Correct    int
	Wrong      int
	Questions  []QuestionFeedback
}

// Score grades answers against ex. A question is correct only when the chosen
// option is the first option flagged correct (by position); unanswered
// questions and questions without a correct option count as wrong.
func Score(ex season.Exam, answers season.Answers) Outcome {
	questions := orderedQuestions(ex.Questions)

	var out Outcome
	for _, q := range questions {
		out.TotalWeight += q.Weight

		options := orderedOptions(q.Options)
		key := answerKey(options)

		chosen, answered := answers.Chosen(q.ID)
		correct := answered && key != nil && chosen == key.ID
		if correct {
			out.EarnedWeight += q.Weight
			out.Correct++
		} else {
			out.Wrong++
		}

		fb := QuestionFeedback{
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			OrderIndex: q.OrderIndex,
			Weight:     q.Weight,
			Correct:    correct,
			Options:    make([]OptionFeedback, len(options)),
		}
		if answered {
			c := chosen
			fb.ChosenOptionID = &c
		}
		for i, o := range options {
			fb.Options[i] = OptionFeedback{ID: o.ID, Label: o.Label, Text: o.Text, IsCorrect: o.IsCorrect, Feedback: o.Feedback}
		}
		out.Questions = append(out.Questions, fb)
	}

	if out.TotalWeight > 0 {
		out.RawPercent = float64(out.EarnedWeight) / float64(out.TotalWeight) * 100
	}
	out.Score = round2(out.RawPercent)
	out.Passed = out.RawPercent >= ex.PassThreshold
	return out
}

func answerKey(options []season.Option) *season.Option {
	for i := range options {
		if options[i].IsCorrect {
			return &options[i]
		}
	}
	return nil
}

func orderedQuestions(in []season.Question) []season.Question {
	out := append([]season.Question(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func orderedOptions(in []season.Option) []season.Option {
	out := append([]season.Option(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
