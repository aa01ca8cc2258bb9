// Package progress records per-user playback of episodes.
package progress

import (
	"context"
	"errors"
	"math/bits"
	"time"

	"nextlevel/models/season"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// An episode counts as watched once playback reaches WatchedNumerator /
// WatchedDenominator of its duration (inclusive).
const (
	WatchedNumerator   = 9
	WatchedDenominator = 10
)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock returns a copy of the store that stamps completions with now.
func (s *Store) WithClock(now func() time.Time) *Store {
	c := *s
	c.now = now
	return &c
}

// ReachedThreshold reports whether elapsed covers the watched share of duration.
// The products are compared in 128 bits so large positions cannot overflow.
func ReachedThreshold(elapsed, duration int) bool {
	if elapsed >= duration {
		return true
	}
	if elapsed < 0 {
		return false
	}
	eHi, eLo := bits.Mul64(uint64(elapsed), WatchedDenominator)
	dHi, dLo := bits.Mul64(uint64(duration), WatchedNumerator)
	return eHi > dHi || (eHi == dHi && eLo >= dLo)
}

// UpsertProgress stores the playback position of userID on episodeID and marks
// the episode watched when the position crosses the threshold. It never clears
// an existing watched flag.
func (s *Store) UpsertProgress(ctx context.Context, userID, episodeID uint, elapsedSeconds int) (season.EpisodeProgress, error) {
	if elapsedSeconds < 0 {
		return season.EpisodeProgress{}, apperr.Invalid("Elapsed seconds must not be negative!")
	}

	var row season.EpisodeProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		episode, err := findEpisode(tx, episodeID)
		if err != nil {
			return err
		}

		if row, err = lockRow(tx, userID, episodeID); err != nil {
			return err
		}

		row.ElapsedSeconds = elapsedSeconds
		if !row.Watched && episode.DurationSeconds != nil && ReachedThreshold(elapsedSeconds, *episode.DurationSeconds) {
			now := s.now()
			row.Watched = true
			row.CompletedAt = &now
		}

		return tx.Save(&row).Error
	})
	return row, err
}

// MarkWatched flags the episode as watched for userID. Calling it on an
// already watched episode changes nothing.
func (s *Store) MarkWatched(ctx context.Context, userID, episodeID uint) (season.EpisodeProgress, error) {
	var row season.EpisodeProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		episode, err := findEpisode(tx, episodeID)
		if err != nil {
			return err
		}

		if row, err = lockRow(tx, userID, episodeID); err != nil {
			return err
		}
		if row.Watched {
			return nil
		}

		now := s.now()
		row.Watched = true
		row.CompletedAt = &now
		if episode.DurationSeconds != nil {
			row.ElapsedSeconds = *episode.DurationSeconds
		}

		return tx.Save(&row).Error
	})
	return row, err
}

// Get returns the stored progress, or a zero row bound to the pair when the
// user has not played the episode yet.
func (s *Store) Get(ctx context.Context, userID, episodeID uint) (season.EpisodeProgress, error) {
	var row season.EpisodeProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND episode_id = ?", userID, episodeID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return season.EpisodeProgress{UserID: userID, EpisodeID: episodeID}, nil
	}
	return row, err
}

func findEpisode(tx *gorm.DB, episodeID uint) (season.Episode, error) {
	var episode season.Episode
	if err := tx.First(&episode, episodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return episode, apperr.NotFound("Episode")
		}
		return episode, err
	}
	return episode, nil
}

// lockRow creates the (user, episode) row when absent and loads it. The
// insert tolerates a concurrent creator through the unique index.
func lockRow(tx *gorm.DB, userID, episodeID uint) (season.EpisodeProgress, error) {
	fresh := season.EpisodeProgress{UserID: userID, EpisodeID: episodeID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return fresh, err
	}

	var row season.EpisodeProgress
	err := tx.Where("user_id = ? AND episode_id = ?", userID, episodeID).First(&row).Error
	return row, err
}
