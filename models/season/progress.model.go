package season

import "time"

// EpisodeProgress tracks one user's playback of one episode
type EpisodeProgress struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	UserID         uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_episode"`
	EpisodeID      uint       `json:"episode_id" gorm:"not null;uniqueIndex:idx_progress_user_episode;index"`
	Watched        bool       `json:"watched" gorm:"default:false"`
	ElapsedSeconds int        `json:"elapsed_seconds" gorm:"default:0"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (EpisodeProgress) TableName() string {
	return "episode_progress"
}
