// Package completion computes how far a user is through a season and whether
// the season's exam is unlocked. Nothing is cached: every call re-reads the
// current episodes and progress rows.
package completion

import (
	"context"
	"errors"
	"math"
	"time"

	"nextlevel/models"
	"nextlevel/models/season"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
)

type SeasonProgress struct {
	Published int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

// Unlocked reports whether every published episode has been watched. A season
// without published episodes is never unlocked.
func (p SeasonProgress) Unlocked() bool {
	return p.Published > 0 && p.Completed == p.Published
}

type EpisodeStatus struct {
	EpisodeID       uint       `json:"episode_id"`
	Title           string     `json:"title"`
	OrderIndex      int        `json:"order_index"`
	Watched         bool       `json:"watched"`
	ElapsedSeconds  int        `json:"elapsed_seconds"`
	DurationSeconds *int       `json:"duration_seconds"`
	Percent         float64    `json:"percent"`
	CompletedAt     *time.Time `json:"completed_at"`
}

type Evaluator struct {
	db *gorm.DB
}

func NewEvaluator(db *gorm.DB) *Evaluator {
	return &Evaluator{db: db}
}

// SeasonProgress counts published episodes of the season and how many of them
// userID has watched.
func (e *Evaluator) SeasonProgress(ctx context.Context, userID, seasonID uint) (SeasonProgress, error) {
	db := e.db.WithContext(ctx)
	if err := ensureSeason(db, seasonID); err != nil {
		return SeasonProgress{}, err
	}

	var published int64
	if err := db.Model(&season.Episode{}).
		Where("season_id = ? AND status = ?", seasonID, season.StatusPublished).
		Count(&published).Error; err != nil {
		return SeasonProgress{}, err
	}

	var completed int64
	if err := db.Model(&season.EpisodeProgress{}).
		Joins("JOIN episodes ON episodes.id = episode_progress.episode_id AND episodes.deleted_at IS NULL").
		Where("episodes.season_id = ? AND episodes.status = ?", seasonID, season.StatusPublished).
		Where("episode_progress.user_id = ? AND episode_progress.watched = ?", userID, true).
		Count(&completed).Error; err != nil {
		return SeasonProgress{}, err
	}

	return newSeasonProgress(int(published), int(completed)), nil
}

// Episodes lists the published episodes of the season in order with the
// user's progress on each.
func (e *Evaluator) Episodes(ctx context.Context, userID, seasonID uint) ([]EpisodeStatus, SeasonProgress, error) {
	db := e.db.WithContext(ctx)
	if err := ensureSeason(db, seasonID); err != nil {
		return nil, SeasonProgress{}, err
	}

	var episodes []season.Episode
	if err := db.Where("season_id = ? AND status = ?", seasonID, season.StatusPublished).
		Order("order_index asc").Find(&episodes).Error; err != nil {
		return nil, SeasonProgress{}, err
	}

	ids := make([]uint, len(episodes))
	for i, ep := range episodes {
		ids[i] = ep.ID
	}

	var rows []season.EpisodeProgress
	if len(ids) > 0 {
		if err := db.Where("user_id = ? AND episode_id IN ?", userID, ids).Find(&rows).Error; err != nil {
			return nil, SeasonProgress{}, err
		}
	}
	byEpisode := make(map[uint]season.EpisodeProgress, len(rows))
	for _, r := range rows {
		byEpisode[r.EpisodeID] = r
	}

	out := make([]EpisodeStatus, len(episodes))
	completed := 0
	for i, ep := range episodes {
		r := byEpisode[ep.ID]
		if r.Watched {
			completed++
		}
		pct := 0.0
		if ep.DurationSeconds != nil && *ep.DurationSeconds > 0 {
			pct = math.Min(float64(r.ElapsedSeconds)/float64(*ep.DurationSeconds)*100, 100)
		}
		out[i] = EpisodeStatus{
			EpisodeID:       ep.ID,
			Title:           ep.Title,
			OrderIndex:      ep.OrderIndex,
			Watched:         r.Watched,
			ElapsedSeconds:  r.ElapsedSeconds,
			DurationSeconds: ep.DurationSeconds,
			Percent:         round1(pct),
			CompletedAt:     r.CompletedAt,
		}
	}

	return out, newSeasonProgress(len(episodes), completed), nil
}

// IsExamUnlocked applies the season gate for p. Administrators bypass it.
func (e *Evaluator) IsExamUnlocked(ctx context.Context, p models.Principal, seasonID uint) (bool, error) {
	if p.IsAdmin() {
		if err := ensureSeason(e.db.WithContext(ctx), seasonID); err != nil {
			return false, err
		}
		return true, nil
	}

	progress, err := e.SeasonProgress(ctx, p.UserID, seasonID)
	if err != nil {
		return false, err
	}
	return progress.Unlocked(), nil
}

func newSeasonProgress(published, completed int) SeasonProgress {
	p := SeasonProgress{Published: published, Completed: completed}
	if published > 0 {
		p.Percent = round1(float64(completed) / float64(published) * 100)
	}
	return p
}

func ensureSeason(db *gorm.DB, seasonID uint) error {
	var s season.Season
	if err := db.Select("id").First(&s, seasonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Season")
		}
		return err
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
