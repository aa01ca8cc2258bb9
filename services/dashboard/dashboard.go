// Package dashboard computes the administrator overview.
package dashboard

import (
	"context"
	"math"
	"time"

	"nextlevel/models"
	"nextlevel/models/season"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type ExamStat struct {
	ExamID   uint    `json:"exam_id"`
	SeasonID uint    `json:"season_id"`
	Title    string  `json:"title"`
	Attempts int64   `json:"attempts"`
	Passed   int64   `json:"passed"`
	PassRate float64 `json:"pass_rate"`
}

type EpisodeStat struct {
	EpisodeID uint   `json:"episode_id"`
	SeasonID  uint   `json:"season_id"`
	Title     string `json:"title"`
	Watched   int64  `json:"watched"`
}

type Stats struct {
	UsersByStatus      map[string]int64 `json:"users_by_status"`
	SeasonsPublished   int64            `json:"seasons_published"`
	EpisodesPublished  int64            `json:"episodes_published"`
	AttemptsToday      int64            `json:"attempts_today"`
	AttemptsThisWeek   int64            `json:"attempts_this_week"`
	CertificatesIssued int64            `json:"certificates_issued"`
	Exams              []ExamStat       `json:"exams"`
	Episodes           []EpisodeStat    `json:"episodes"`
}

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Stats gathers the dashboard figures. "Today" and "this week" are taken in
// the location of at.
func (s *Service) Stats(ctx context.Context, at time.Time) (Stats, error) {
	db := s.db.WithContext(ctx)
	st := Stats{UsersByStatus: map[string]int64{}}

	var byStatus []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&models.User{}).Select("status, COUNT(*) AS total").Group("status").Scan(&byStatus).Error; err != nil {
		return st, err
	}
	for _, row := range byStatus {
		st.UsersByStatus[row.Status] = row.Total
	}

	if err := db.Model(&season.Season{}).Where("status = ?", season.StatusPublished).Count(&st.SeasonsPublished).Error; err != nil {
		return st, err
	}
	if err := db.Model(&season.Episode{}).Where("status = ?", season.StatusPublished).Count(&st.EpisodesPublished).Error; err != nil {
		return st, err
	}

	day := now.With(at)
	if err := db.Model(&season.Attempt{}).Where("created_at >= ?", day.BeginningOfDay()).Count(&st.AttemptsToday).Error; err != nil {
		return st, err
	}
	if err := db.Model(&season.Attempt{}).Where("created_at >= ?", day.BeginningOfWeek()).Count(&st.AttemptsThisWeek).Error; err != nil {
		return st, err
	}
	if err := db.Model(&season.Certificate{}).Count(&st.CertificatesIssued).Error; err != nil {
		return st, err
	}

	if err := db.Table("exams").
		Select("exams.id AS exam_id, exams.season_id, exams.title, COUNT(attempts.id) AS attempts, " +
			"COALESCE(SUM(CASE WHEN attempts.passed THEN 1 ELSE 0 END), 0) AS passed").
		Joins("LEFT JOIN attempts ON attempts.exam_id = exams.id").
		Where("exams.deleted_at IS NULL").
		Group("exams.id, exams.season_id, exams.title").
		Order("exams.id asc").
		Scan(&st.Exams).Error; err != nil {
		return st, err
	}
	for i := range st.Exams {
		if st.Exams[i].Attempts > 0 {
			rate := float64(st.Exams[i].Passed) / float64(st.Exams[i].Attempts) * 100
			st.Exams[i].PassRate = math.Round(rate*10) / 10
		}
	}

	if err := db.Table("episodes").
		Select("episodes.id AS episode_id, episodes.season_id, episodes.title, "+
			"COALESCE(SUM(CASE WHEN episode_progress.watched THEN 1 ELSE 0 END), 0) AS watched").
		Joins("LEFT JOIN episode_progress ON episode_progress.episode_id = episodes.id").
		Where("episodes.deleted_at IS NULL AND episodes.status = ?", season.StatusPublished).
		Group("episodes.id, episodes.season_id, episodes.title, episodes.order_index").
		Order("episodes.season_id asc, episodes.order_index asc").
		Scan(&st.Episodes).Error; err != nil {
		return st, err
	}

	return st, nil
}
