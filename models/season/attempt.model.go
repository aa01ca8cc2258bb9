package season

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// Answers maps a question id (decimal string) to the chosen option id
type Answers map[string]uint

func AnswerKey(questionID uint) string {
	return strconv.FormatUint(uint64(questionID), 10)
}

// Chosen returns the option picked for questionID, if any.
func (a Answers) Chosen(questionID uint) (uint, bool) {
	id, ok := a[AnswerKey(questionID)]
	return id, ok
}

// Attempt is one scored exam submission. Rows are written once and never updated.
type Attempt struct {
	ID             uint                        `json:"id" gorm:"primarykey"`
	UserID         uint                        `json:"user_id" gorm:"not null;uniqueIndex:idx_attempt_user_exam_number;index"`
	ExamID         uint                        `json:"exam_id" gorm:"not null;uniqueIndex:idx_attempt_user_exam_number;index"`
	AttemptNumber  int                         `json:"attempt_number" gorm:"not null;uniqueIndex:idx_attempt_user_exam_number"`
	Answers        datatypes.JSONType[Answers] `json:"answers"`
	Score          float64                     `json:"score" gorm:"type:numeric(5,2);not null"`
	Passed         bool                        `json:"passed" gorm:"not null"`
	ElapsedSeconds *int                        `json:"elapsed_seconds"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// Certificate records the issuance of a certificate for a passing attempt
type Certificate struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	ExamID            uint      `json:"exam_id" gorm:"index;not null"`
	AttemptID         uint      `json:"attempt_id" gorm:"uniqueIndex;not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"uniqueIndex;not null"`
	IssuedAt          time.Time `json:"issued_at"`
}
