// Package ledger is the append-only record of scored exam attempts.
package ledger

import (
	"context"
	"errors"

	"nextlevel/models/season"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
)

type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// CountAttempts returns every attempt userID ever made on examID, passed or not.
func (l *Ledger) CountAttempts(ctx context.Context, userID, examID uint) (int, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&season.Attempt{}).
		Where("user_id = ? AND exam_id = ?", userID, examID).
		Count(&n).Error
	return int(n), err
}

// BestOrLatest returns the most recent passing attempt, or nil when the user
// has never passed.
func (l *Ledger) BestOrLatest(ctx context.Context, userID, examID uint) (*season.Attempt, error) {
	var a season.Attempt
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND exam_id = ? AND passed = ?", userID, examID, true).
		Order("attempt_number desc").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// History lists the attempts of userID on examID, newest first.
func (l *Ledger) History(ctx context.Context, userID, examID uint) ([]season.Attempt, error) {
	attempts := []season.Attempt{}
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND exam_id = ?", userID, examID).
		Order("attempt_number desc").
		Find(&attempts).Error
	return attempts, err
}

func (l *Ledger) Get(ctx context.Context, attemptID uint) (season.Attempt, error) {
	var a season.Attempt
	if err := l.db.WithContext(ctx).First(&a, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a, apperr.NotFound("Attempt")
		}
		return a, err
	}
	return a, nil
}

// Append inserts a new attempt. A clash on (user, exam, attempt number) means
// a concurrent submission got there first and is reported as a conflict.
func (l *Ledger) Append(ctx context.Context, a *season.Attempt) error {
	if a.ID != 0 {
		return apperr.Invalid("Attempts cannot be rewritten!")
	}
	err := l.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.ErrAttemptConflict, err)
	}
	return err
}
