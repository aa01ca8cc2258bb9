package season

import (
	"time"

	"gorm.io/gorm"
)

// Lifecycle statuses shared by seasons and episodes
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

// Season is an ordered collection of episodes with an optional gated exam
type Season struct {
	gorm.Model
	Title           string     `json:"title" gorm:"not null"`
	Description     string     `json:"description" gorm:"type:text"`
	OrderIndex      int        `json:"order_index" gorm:"index;default:0"`
	Mantra          string     `json:"mantra" gorm:"type:text"`
	CoverURL        string     `json:"cover_url"`
	CoverKey        string     `json:"-"`
	Status          string     `json:"status" gorm:"index;default:'DRAFT'"`
	ReleaseAt       *time.Time `json:"release_at"`
	IsVisible       bool       `json:"is_visible" gorm:"not null"`
	ReleaseNotified bool       `json:"-" gorm:"default:false"`
}

// IsAvailable reports whether learners may see the season at t.
func (s Season) IsAvailable(t time.Time) bool {
	if s.Status != StatusPublished || !s.IsVisible {
		return false
	}
	return s.ReleaseAt == nil || !s.ReleaseAt.After(t)
}
