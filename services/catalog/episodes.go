package catalog

import (
	"context"
	"errors"

	"nextlevel/models"
	"nextlevel/models/season"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
)

type EpisodePatch struct {
	Title           *string
	Description     *string
	OrderIndex      *int
	DurationSeconds *int
	AudioURL        *string
	VideoURL        *string
	ThumbnailURL    *string
	MediaKey        *string
	Transcript      *string
	Status          *string
}

// EpisodeDetail is an episode together with its attachments.
type EpisodeDetail struct {
	season.Episode
	Attachments []season.EpisodeAttachment `json:"attachments"`
}

var errPositionTaken = apperr.Conflict("Another episode already uses this position!")

// ListEpisodes returns the season's episodes by position. Learners only see
// published episodes of an available season.
func (c *Catalog) ListEpisodes(ctx context.Context, p models.Principal, seasonID uint) ([]season.Episode, error) {
	if _, err := c.GetSeason(ctx, p, seasonID); err != nil {
		return nil, err
	}

	db := c.db.WithContext(ctx).Where("season_id = ?", seasonID).Order("order_index asc")
	if !p.IsAdmin() {
		db = db.Where("status = ?", season.StatusPublished)
	}

	var episodes []season.Episode
	if err := db.Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

func (c *Catalog) GetEpisode(ctx context.Context, p models.Principal, id uint) (EpisodeDetail, error) {
	db := c.db.WithContext(ctx)

	var ep season.Episode
	if err := db.First(&ep, id).Error; err != nil {
		return EpisodeDetail{}, notFound(err, "Episode")
	}
	if err := forbidLearner(p, ep.Status == season.StatusPublished, "Episode"); err != nil {
		return EpisodeDetail{}, err
	}
	if _, err := c.GetSeason(ctx, p, ep.SeasonID); err != nil {
		return EpisodeDetail{}, err
	}

	detail := EpisodeDetail{Episode: ep}
	if err := db.Where("episode_id = ?", id).Order("order_index asc, id asc").Find(&detail.Attachments).Error; err != nil {
		return EpisodeDetail{}, err
	}
	return detail, nil
}

// CreateEpisode adds ep to its season. A zero position appends it after the
// last episode.
func (c *Catalog) CreateEpisode(ctx context.Context, ep *season.Episode) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s season.Season
		if err := tx.Select("id").First(&s, ep.SeasonID).Error; err != nil {
			return notFound(err, "Season")
		}

		if ep.OrderIndex == 0 {
			var last int
			if err := tx.Model(&season.Episode{}).Where("season_id = ?", ep.SeasonID).
				Select("COALESCE(MAX(order_index), 0)").Scan(&last).Error; err != nil {
				return err
			}
			ep.OrderIndex = last + 1
		}
		if ep.Status == "" {
			ep.Status = season.StatusDraft
		}

		return positionConflict(tx.Create(ep).Error)
	})
}

func (c *Catalog) UpdateEpisode(ctx context.Context, id uint, patch EpisodePatch) (season.Episode, error) {
	var ep season.Episode
	if err := c.db.WithContext(ctx).First(&ep, id).Error; err != nil {
		return ep, notFound(err, "Episode")
	}

	oldMedia := ep.MediaKey
	if patch.Title != nil {
		ep.Title = *patch.Title
	}
	if patch.Description != nil {
		ep.Description = *patch.Description
	}
	if patch.OrderIndex != nil {
		ep.OrderIndex = *patch.OrderIndex
	}
	if patch.DurationSeconds != nil {
		d := *patch.DurationSeconds
		ep.DurationSeconds = &d
	}
	if patch.AudioURL != nil {
		ep.AudioURL = *patch.AudioURL
	}
	if patch.VideoURL != nil {
		ep.VideoURL = *patch.VideoURL
	}
	if patch.ThumbnailURL != nil {
		ep.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.MediaKey != nil {
		ep.MediaKey = *patch.MediaKey
	}
	if patch.Transcript != nil {
		ep.Transcript = *patch.Transcript
	}
	if patch.Status != nil {
		ep.Status = *patch.Status
	}

	if err := positionConflict(c.db.WithContext(ctx).Save(&ep).Error); err != nil {
		return season.Episode{}, err
	}
	if oldMedia != ep.MediaKey {
		c.removeObjects(ctx, []string{oldMedia})
	}
	return ep, nil
}

// ReorderEpisodes assigns positions 1..n following ids, which must list every
// episode of the season exactly once.
func (c *Catalog) ReorderEpisodes(ctx context.Context, seasonID uint, ids []uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uint
		if err := tx.Model(&season.Episode{}).Where("season_id = ?", seasonID).Pluck("id", &current).Error; err != nil {
			return err
		}
		if !sameSet(current, ids) {
			return apperr.Invalid("The new order must list every episode of the season exactly once!")
		}

		// Park every row on a negative position first so that no intermediate
		// state collides on the (season, position) index.
		for i, id := range ids {
			if err := tx.Model(&season.Episode{}).Where("id = ?", id).Update("order_index", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, id := range ids {
			if err := tx.Model(&season.Episode{}).Where("id = ?", id).Update("order_index", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteEpisode removes the episode with its attachments and every user's
// progress on it.
func (c *Catalog) DeleteEpisode(ctx context.Context, id uint) error {
	var keys []string
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ep season.Episode
		if err := tx.First(&ep, id).Error; err != nil {
			return notFound(err, "Episode")
		}
		var err error
		keys, err = deleteEpisode(tx, ep)
		return err
	})
	if err != nil {
		return err
	}

	c.removeObjects(ctx, keys)
	return nil
}

func (c *Catalog) AddAttachment(ctx context.Context, a *season.EpisodeAttachment) error {
	db := c.db.WithContext(ctx)
	var ep season.Episode
	if err := db.Select("id").First(&ep, a.EpisodeID).Error; err != nil {
		return notFound(err, "Episode")
	}
	return db.Create(a).Error
}

func (c *Catalog) DeleteAttachment(ctx context.Context, id uint) error {
	var a season.EpisodeAttachment
	db := c.db.WithContext(ctx)
	if err := db.First(&a, id).Error; err != nil {
		return notFound(err, "Attachment")
	}
	if err := db.Delete(&a).Error; err != nil {
		return err
	}

	c.removeObjects(ctx, []string{a.ObjectKey})
	return nil
}

// deleteEpisode hard-deletes ep and its dependents on tx and returns the
// storage keys that belonged to them.
func deleteEpisode(tx *gorm.DB, ep season.Episode) ([]string, error) {
	keys := []string{ep.MediaKey}

	var attachmentKeys []string
	if err := tx.Model(&season.EpisodeAttachment{}).Where("episode_id = ?", ep.ID).Pluck("object_key", &attachmentKeys).Error; err != nil {
		return nil, err
	}
	keys = append(keys, attachmentKeys...)

	if err := tx.Where("episode_id = ?", ep.ID).Delete(&season.EpisodeAttachment{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("episode_id = ?", ep.ID).Delete(&season.EpisodeProgress{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Unscoped().Delete(&season.Episode{}, ep.ID).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func positionConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(errPositionTaken, err)
	}
	return err
}

func sameSet(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uint]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}
