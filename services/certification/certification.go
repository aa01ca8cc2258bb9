// Package certification decides whether a user may take a season's exam and
// whether a certificate may be issued for an attempt.
package certification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nextlevel/models"
	"nextlevel/models/season"
	"nextlevel/services/apperr"
	"nextlevel/services/completion"
	"nextlevel/services/ledger"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Status struct {
	SeasonID          uint     `json:"season_id"`
	ExamID            uint     `json:"exam_id"`
	ExamUnlocked      bool     `json:"exam_unlocked"`
	AttemptsAllowed   int      `json:"attempts_allowed"`
	AttemptsUsed      int      `json:"attempts_used"`
	AttemptsRemaining int      `json:"attempts_remaining"`
	AlreadyCertified  bool     `json:"already_certified"`
	AccessBlocked     bool     `json:"access_blocked"`
	BlockReason       string   `json:"block_reason,omitempty"`
	SeasonComplete    bool     `json:"season_complete"`
	BestScore         *float64 `json:"best_score"`
	BestAttemptID     *uint    `json:"best_attempt_id"`
}

// BlockError returns the error explaining why a new attempt is refused, or
// nil when the user may attempt the exam.
func (s Status) BlockError() error {
	switch s.BlockReason {
	case apperr.CodeExamLocked:
		return apperr.ErrExamLocked
	case apperr.CodeAlreadyCertified:
		return apperr.ErrAlreadyCertified
	case apperr.CodeAttemptsExhausted:
		return apperr.ErrAttemptsExhausted
	}
	return nil
}

// Fields are handed to the renderer; it returns the finished document.
type Fields struct {
	StudentName       string    `json:"student_name"`
	ExamTitle         string    `json:"exam_title"`
	SeasonTitle       string    `json:"season_title"`
	Score             float64   `json:"score"`
	TakenAt           time.Time `json:"taken_at"`
	CertificateNumber string    `json:"certificate_number"`
}

type Renderer interface {
	Render(ctx context.Context, f Fields) ([]byte, error)
}

type Document struct {
	FileName    string
	Content     []byte
	Certificate season.Certificate
}

type Decision struct {
	db       *gorm.DB
	renderer Renderer
	now      func() time.Time
}

func New(db *gorm.DB, renderer Renderer) *Decision {
	return &Decision{db: db, renderer: renderer, now: time.Now}
}

// Status reports the certification state of p for the exam of seasonID.
func (d *Decision) Status(ctx context.Context, p models.Principal, seasonID uint) (Status, error) {
	var ex season.Exam
	if err := d.db.WithContext(ctx).Where("season_id = ?", seasonID).First(&ex).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Status{}, apperr.NotFound("Exam")
		}
		return Status{}, err
	}
	return d.ForExam(ctx, p, ex)
}

// ForExam composes the season gate with the attempt ledger for ex.
func (d *Decision) ForExam(ctx context.Context, p models.Principal, ex season.Exam) (Status, error) {
	unlocked, err := completion.NewEvaluator(d.db).IsExamUnlocked(ctx, p, ex.SeasonID)
	if err != nil {
		return Status{}, err
	}

	l := ledger.New(d.db)
	used, err := l.CountAttempts(ctx, p.UserID, ex.ID)
	if err != nil {
		return Status{}, err
	}
	best, err := l.BestOrLatest(ctx, p.UserID, ex.ID)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		SeasonID:          ex.SeasonID,
		ExamID:            ex.ID,
		ExamUnlocked:      unlocked,
		AttemptsAllowed:   ex.AttemptsAllowed,
		AttemptsUsed:      used,
		AttemptsRemaining: max(0, ex.AttemptsAllowed-used),
		AlreadyCertified:  best != nil,
	}
	if best != nil {
		st.BestScore = &best.Score
		st.BestAttemptID = &best.ID
	}

	switch {
	case !st.ExamUnlocked:
		st.BlockReason = apperr.CodeExamLocked
	case st.AlreadyCertified && !p.IsAdmin():
		st.BlockReason = apperr.CodeAlreadyCertified
	case st.AttemptsRemaining == 0:
		st.BlockReason = apperr.CodeAttemptsExhausted
	}
	st.AccessBlocked = st.BlockReason != ""
	st.SeasonComplete = st.ExamUnlocked && st.AlreadyCertified
	return st, nil
}

// Issue renders the certificate of attemptID. Only the attempt's owner or an
// administrator may request it, and only for a passing attempt.
func (d *Decision) Issue(ctx context.Context, p models.Principal, examID, attemptID uint) (Document, error) {
	db := d.db.WithContext(ctx)

	attempt, err := ledger.New(d.db).Get(ctx, attemptID)
	if err != nil {
		return Document{}, err
	}
	if attempt.ExamID != examID {
		return Document{}, apperr.NotFound("Attempt")
	}
	if attempt.UserID != p.UserID && !p.IsAdmin() {
		return Document{}, apperr.Forbidden("This attempt belongs to another user!")
	}
	if !attempt.Passed {
		return Document{}, apperr.ErrNotEligible
	}

	var ex season.Exam
	if err := db.First(&ex, examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, apperr.NotFound("Exam")
		}
		return Document{}, err
	}

	var s season.Season
	if err := db.First(&s, ex.SeasonID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, err
	}

	var owner models.User
	if err := db.First(&owner, attempt.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, apperr.NotFound("User")
		}
		return Document{}, err
	}

	cert, err := d.record(db, attempt)
	if err != nil {
		return Document{}, err
	}

	seasonTitle := s.Title
	if seasonTitle == "" {
		seasonTitle = "N/A"
	}
	content, err := d.renderer.Render(ctx, Fields{
		StudentName:       owner.Name,
		ExamTitle:         ex.Title,
		SeasonTitle:       seasonTitle,
		Score:             attempt.Score,
		TakenAt:           attempt.CreatedAt,
		CertificateNumber: cert.CertificateNumber,
	})
	if err != nil {
		return Document{}, fmt.Errorf("render certificate: %w", err)
	}

	return Document{
		FileName:    fmt.Sprintf("certificate-%s.pdf", strings.ReplaceAll(ex.Title, " ", "_")),
		Content:     content,
		Certificate: cert,
	}, nil
}

// record returns the certificate row of the attempt, creating it on first issue.
func (d *Decision) record(db *gorm.DB, attempt season.Attempt) (season.Certificate, error) {
	fresh := season.Certificate{
		UserID:            attempt.UserID,
		ExamID:            attempt.ExamID,
		AttemptID:         attempt.ID,
		CertificateNumber: strings.ToUpper(uuid.NewString()),
		IssuedAt:          d.now(),
	}
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "attempt_id"}}, DoNothing: true}).Create(&fresh).Error; err != nil {
		return season.Certificate{}, err
	}

	var cert season.Certificate
	err := db.Where("attempt_id = ?", attempt.ID).First(&cert).Error
	return cert, err
}
