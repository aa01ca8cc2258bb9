package season

import (
	"time"

	"gorm.io/gorm"
)

// Episode is a unit of media inside a season
type Episode struct {
	gorm.Model
	SeasonID        uint   `json:"season_id" gorm:"not null;uniqueIndex:idx_episode_season_order"`
	OrderIndex      int    `json:"order_index" gorm:"not null;uniqueIndex:idx_episode_season_order"`
	Title           string `json:"title" gorm:"not null"`
	Description     string `json:"description" gorm:"type:text"`
	DurationSeconds *int   `json:"duration_seconds"`
	AudioURL        string `json:"audio_url"`
	VideoURL        string `json:"video_url"`
	ThumbnailURL    string `json:"thumbnail_url"`
	MediaKey        string `json:"-"`
	Transcript      string `json:"transcript" gorm:"type:text"`
	Status          string `json:"status" gorm:"index;default:'DRAFT'"`
}

// Attachment types
const (
	AttachmentPDF      = "PDF"
	AttachmentImage    = "IMAGE"
	AttachmentDocument = "DOCUMENT"
	AttachmentAudio    = "AUDIO"
)

// EpisodeAttachment is an extra file (pdf, image, ...) served next to an episode
type EpisodeAttachment struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	EpisodeID  uint      `json:"episode_id" gorm:"index;not null"`
	Type       string    `json:"type" gorm:"size:20;not null"`
	FileName   string    `json:"file_name" gorm:"not null"`
	URL        string    `json:"url" gorm:"type:text;not null"`
	ObjectKey  string    `json:"-"`
	SizeBytes  int64     `json:"size_bytes"`
	OrderIndex int       `json:"order_index" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
}
