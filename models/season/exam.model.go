package season

import "gorm.io/gorm"

// Exam is the weighted multiple-choice assessment gating a season's certificate
type Exam struct {
	gorm.Model
	SeasonID         uint       `json:"season_id" gorm:"not null;uniqueIndex"`
	Title            string     `json:"title" gorm:"not null"`
	Description      string     `json:"description" gorm:"type:text"`
	AttemptsAllowed  int        `json:"attempts_allowed" gorm:"not null;default:3"`
	PassThreshold    float64    `json:"pass_threshold" gorm:"type:numeric(5,2);not null"`
	TimeLimitMinutes *int       `json:"time_limit_minutes"`
	RevealAnswers    bool       `json:"reveal_answers" gorm:"not null"`
	Questions        []Question `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
}

// Question belongs to an exam; Weight is the number of points it is worth
type Question struct {
	gorm.Model
	ExamID     uint     `json:"exam_id" gorm:"index;not null"`
	Prompt     string   `json:"prompt" gorm:"type:text;not null"`
	OrderIndex int      `json:"order_index" gorm:"default:0"`
	Weight     int      `json:"weight" gorm:"not null;default:1"`
	Options    []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// Option is one answer choice of a question
type Option struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Label      string `json:"label" gorm:"size:4"` // A, B, C, D
	Text       string `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	Feedback   string `json:"feedback" gorm:"type:text"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
}
