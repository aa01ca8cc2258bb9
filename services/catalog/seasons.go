package catalog

import (
	"context"
	"time"

	"nextlevel/models"
	"nextlevel/models/season"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
)

// SeasonPatch carries the fields of an update; nil fields are left untouched.
type SeasonPatch struct {
	Title          *string
	Description    *string
	OrderIndex     *int
	Mantra         *string
	CoverURL       *string
	CoverKey       *string
	Status         *string
	ReleaseAt      *time.Time
	ClearReleaseAt bool
	IsVisible      *bool
}

// ListSeasons returns seasons by position. Learners only see seasons that are
// published, visible and released.
func (c *Catalog) ListSeasons(ctx context.Context, p models.Principal) ([]season.Season, error) {
	db := c.db.WithContext(ctx).Order("order_index asc, id asc")
	if !p.IsAdmin() {
		db = db.Where("status = ? AND is_visible = ? AND (release_at IS NULL OR release_at <= ?)",
			season.StatusPublished, true, c.now())
	}

	var seasons []season.Season
	if err := db.Find(&seasons).Error; err != nil {
		return nil, err
	}
	return seasons, nil
}

// GetSeason loads a season, refusing learners access to unavailable ones.
func (c *Catalog) GetSeason(ctx context.Context, p models.Principal, id uint) (season.Season, error) {
	var s season.Season
	if err := c.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return s, notFound(err, "Season")
	}
	if err := forbidLearner(p, s.IsAvailable(c.now()), "Season"); err != nil {
		return season.Season{}, err
	}
	return s, nil
}

func (c *Catalog) CreateSeason(ctx context.Context, s *season.Season) error {
	if s.Status == "" {
		s.Status = season.StatusDraft
	}
	return c.db.WithContext(ctx).Create(s).Error
}

// UpdateSeason applies patch. A changed release date re-arms the release
// notification. A replaced cover is removed from storage after the update.
func (c *Catalog) UpdateSeason(ctx context.Context, id uint, patch SeasonPatch) (season.Season, error) {
	var s season.Season
	if err := c.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return s, notFound(err, "Season")
	}

	oldCover := s.CoverKey
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.OrderIndex != nil {
		s.OrderIndex = *patch.OrderIndex
	}
	if patch.Mantra != nil {
		s.Mantra = *patch.Mantra
	}
	if patch.CoverURL != nil {
		s.CoverURL = *patch.CoverURL
	}
	if patch.CoverKey != nil {
		s.CoverKey = *patch.CoverKey
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.IsVisible != nil {
		s.IsVisible = *patch.IsVisible
	}
	if patch.ClearReleaseAt {
		s.ReleaseAt = nil
		s.ReleaseNotified = false
	} else if patch.ReleaseAt != nil {
		t := *patch.ReleaseAt
		s.ReleaseAt = &t
		s.ReleaseNotified = false
	}

	if err := c.db.WithContext(ctx).Save(&s).Error; err != nil {
		return season.Season{}, err
	}
	if oldCover != s.CoverKey {
		c.removeObjects(ctx, []string{oldCover})
	}
	return s, nil
}

// ReorderSeasons assigns positions 1..n following ids.
func (c *Catalog) ReorderSeasons(ctx context.Context, ids []uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&season.Season{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return err
		}
		if int(n) != len(ids) {
			return apperr.NotFound("Season")
		}
		for i, id := range ids {
			if err := tx.Model(&season.Season{}).Where("id = ?", id).Update("order_index", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DuplicateSeason copies a season's metadata into a new draft at the end of
// the list. Episodes and the exam are not copied.
func (c *Catalog) DuplicateSeason(ctx context.Context, id uint) (season.Season, error) {
	var copied season.Season
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src season.Season
		if err := tx.First(&src, id).Error; err != nil {
			return notFound(err, "Season")
		}

		var last int
		if err := tx.Model(&season.Season{}).Select("COALESCE(MAX(order_index), 0)").Scan(&last).Error; err != nil {
			return err
		}

		copied = season.Season{
			Title:       src.Title + " (Copy)",
			Description: src.Description,
			OrderIndex:  last + 1,
			Mantra:      src.Mantra,
			CoverURL:    src.CoverURL,
			Status:      season.StatusDraft,
			IsVisible:   src.IsVisible,
		}
		return tx.Create(&copied).Error
	})
	return copied, err
}

// DeleteSeason removes the season with its exam, episodes and everything
// recorded against them.
func (c *Catalog) DeleteSeason(ctx context.Context, id uint) error {
	var keys []string
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s season.Season
		if err := tx.First(&s, id).Error; err != nil {
			return notFound(err, "Season")
		}
		keys = append(keys, s.CoverKey)

		var examIDs []uint
		if err := tx.Model(&season.Exam{}).Where("season_id = ?", id).Pluck("id", &examIDs).Error; err != nil {
			return err
		}
		for _, examID := range examIDs {
			if err := deleteExam(tx, examID); err != nil {
				return err
			}
		}

		var episodes []season.Episode
		if err := tx.Where("season_id = ?", id).Find(&episodes).Error; err != nil {
			return err
		}
		for _, ep := range episodes {
			epKeys, err := deleteEpisode(tx, ep)
			if err != nil {
				return err
			}
			keys = append(keys, epKeys...)
		}

		return tx.Unscoped().Delete(&season.Season{}, id).Error
	})
	if err != nil {
		return err
	}

	c.removeObjects(ctx, keys)
	return nil
}
