package completion

import (
	"context"
	"errors"
	"time"

	"nextlevel/models/season"
	"nextlevel/services/ledger"

	"gorm.io/gorm"
)

type SeasonSummary struct {
	SeasonID     uint   `json:"season_id"`
	Title        string `json:"title"`
	OrderIndex   int    `json:"order_index"`
	SeasonProgress
	ExamID       *uint    `json:"exam_id"`
	ExamUnlocked bool     `json:"exam_unlocked"`
	ExamPassed   bool     `json:"exam_passed"`
	BestScore    *float64 `json:"best_score"`
}

// Completed reports whether every episode is watched and the exam is passed.
func (s SeasonSummary) Completed() bool {
	return s.Unlocked() && s.ExamPassed
}

type Overview struct {
	Seasons           []SeasonSummary `json:"seasons"`
	SeasonsCompleted  int             `json:"seasons_completed"`
	TotalEpisodes     int             `json:"total_episodes"`
	CompletedEpisodes int             `json:"completed_episodes"`
	SecondsWatched    int64           `json:"seconds_watched"`
	ExamsPassed       int             `json:"exams_passed"`
}

// Overview summarises userID's progress across every season available to
// learners at now.
func (e *Evaluator) Overview(ctx context.Context, userID uint, now time.Time) (Overview, error) {
	db := e.db.WithContext(ctx)

	var seasons []season.Season
	if err := db.Where("status = ? AND is_visible = ? AND (release_at IS NULL OR release_at <= ?)", season.StatusPublished, true, now).
		Order("order_index asc, id asc").Find(&seasons).Error; err != nil {
		return Overview{}, err
	}

	l := ledger.New(e.db)
	out := Overview{Seasons: make([]SeasonSummary, 0, len(seasons))}
	for _, s := range seasons {
		progress, err := e.SeasonProgress(ctx, userID, s.ID)
		if err != nil {
			return Overview{}, err
		}

		sum := SeasonSummary{
			SeasonID:       s.ID,
			Title:          s.Title,
			OrderIndex:     s.OrderIndex,
			SeasonProgress: progress,
			ExamUnlocked:   progress.Unlocked(),
		}

		var ex season.Exam
		err = db.Select("id").Where("season_id = ?", s.ID).First(&ex).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return Overview{}, err
		default:
			sum.ExamID = &ex.ID
			best, err := l.BestOrLatest(ctx, userID, ex.ID)
			if err != nil {
				return Overview{}, err
			}
			if best != nil {
				sum.ExamPassed = true
				sum.BestScore = &best.Score
				out.ExamsPassed++
			}
		}

		if sum.Completed() {
			out.SeasonsCompleted++
		}
		out.TotalEpisodes += progress.Published
		out.CompletedEpisodes += progress.Completed
		out.Seasons = append(out.Seasons, sum)
	}

	if err := db.Model(&season.EpisodeProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(elapsed_seconds), 0)").
		Scan(&out.SecondsWatched).Error; err != nil {
		return Overview{}, err
	}
	return out, nil
}
