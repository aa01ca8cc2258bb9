// Package fixture builds catalog rows for tests.
package fixture

import (
	"fmt"
	"testing"

	"nextlevel/models"
	"nextlevel/models/season"

	"gorm.io/gorm"
)

func User(t testing.TB, db *gorm.DB, role string) models.User {
	t.Helper()
	var n int64
	db.Model(&models.User{}).Count(&n)
	u := models.User{
		Name:     fmt.Sprintf("User %d", n+1),
		Email:    fmt.Sprintf("user%d@example.com", n+1),
		Password: "x",
		Role:     role,
		Status:   models.UserActive,
	}
	must(t, db.Create(&u).Error)
	return u
}

func Season(t testing.TB, db *gorm.DB) season.Season {
	t.Helper()
	s := season.Season{Title: "Season", Status: season.StatusPublished, IsVisible: true}
	must(t, db.Create(&s).Error)
	return s
}

// Episode creates an episode at the next position. duration 0 means unknown.
func Episode(t testing.TB, db *gorm.DB, seasonID uint, status string, duration int) season.Episode {
	t.Helper()
	var n int64
	db.Model(&season.Episode{}).Where("season_id = ?", seasonID).Count(&n)
	e := season.Episode{SeasonID: seasonID, OrderIndex: int(n) + 1, Title: fmt.Sprintf("Episode %d", n+1), Status: status}
	if duration > 0 {
		e.DurationSeconds = &duration
	}
	must(t, db.Create(&e).Error)
	return e
}

// QuestionSpec describes one question: its weight and which option (by
// position, -1 for none) is correct. Every question gets three options.
type QuestionSpec struct {
	Weight  int
	Correct int
}

func Exam(t testing.TB, db *gorm.DB, seasonID uint, attempts int, threshold float64, reveal bool, questions ...QuestionSpec) season.Exam {
	t.Helper()
	ex := season.Exam{SeasonID: seasonID, Title: "Final exam", AttemptsAllowed: attempts, PassThreshold: threshold, RevealAnswers: reveal}
	must(t, db.Create(&ex).Error)

	for i, spec := range questions {
		q := season.Question{ExamID: ex.ID, Prompt: fmt.Sprintf("Question %d", i+1), OrderIndex: i + 1, Weight: spec.Weight}
		must(t, db.Create(&q).Error)
		for j, label := range []string{"A", "B", "C"} {
			o := season.Option{QuestionID: q.ID, Label: label, Text: "Option " + label, IsCorrect: j == spec.Correct, Feedback: "Because " + label, OrderIndex: j + 1}
			must(t, db.Create(&o).Error)
			q.Options = append(q.Options, o)
		}
		ex.Questions = append(ex.Questions, q)
	}
	return ex
}

// CorrectAnswers answers every question of ex with its first correct option.
func CorrectAnswers(ex season.Exam) season.Answers {
	answers := season.Answers{}
	for _, q := range ex.Questions {
		for _, o := range q.Options {
			if o.IsCorrect {
				answers[season.AnswerKey(q.ID)] = o.ID
				break
			}
		}
	}
	return answers
}

// WrongAnswers answers every question with an option that is not correct.
func WrongAnswers(ex season.Exam) season.Answers {
	answers := season.Answers{}
	for _, q := range ex.Questions {
		for _, o := range q.Options {
			if !o.IsCorrect {
				answers[season.AnswerKey(q.ID)] = o.ID
				break
			}
		}
	}
	return answers
}

func Watch(t testing.TB, db *gorm.DB, userID uint, episodes ...season.Episode) {
	t.Helper()
	for _, e := range episodes {
		must(t, db.Create(&season.EpisodeProgress{UserID: userID, EpisodeID: e.ID, Watched: true}).Error)
	}
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}
