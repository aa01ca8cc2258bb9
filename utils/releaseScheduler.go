package utils

import (
	"log"
	"time"

	"nextlevel/database"
	"nextlevel/models"
	"nextlevel/models/season"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReleaseNotifier tells one user that a season is out.
type ReleaseNotifier func(user models.User, s season.Season)

func emailRelease(user models.User, s season.Season) {
	SendSeasonReleasedEmail(user.Email, user.Name, s.Title)
}

// InitializeReleaseScheduler starts the cron job announcing newly released
// seasons. The caller stops it on shutdown.
func InitializeReleaseScheduler(spec string) (*cron.Cron, error) {
	log.Println("[RELEASE-SCHEDULER] Initializing release scheduler...")

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := NotifyReleasedSeasons(database.Database.Db, time.Now(), emailRelease); err != nil {
			log.Printf("[RELEASE-SCHEDULER] run failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[RELEASE-SCHEDULER] Release scheduler started with schedule %q", spec)
	return c, nil
}

// NotifyReleasedSeasons announces every published, visible season whose
// release date passed before at and that was not announced yet. Seasons
// released before the start of the previous day are marked without mailing.
func NotifyReleasedSeasons(db *gorm.DB, at time.Time, notify ReleaseNotifier) (int, error) {
	var due []season.Season
	if err := db.
		Where("status = ? AND is_visible = ? AND release_notified = ?", season.StatusPublished, true, false).
		Where("release_at IS NOT NULL AND release_at <= ?", at).
		Order("release_at asc").
		Find(&due).Error; err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	var users []models.User
	if err := db.Where("status = ? AND role = ?", models.UserActive, models.RoleUser).Find(&users).Error; err != nil {
		return 0, err
	}

	cutoff := now.With(at).BeginningOfDay().AddDate(0, 0, -1)
	announced := 0
	for _, s := range due {
		if s.ReleaseAt.Before(cutoff) {
			log.Printf("[RELEASE-SCHEDULER] Season %d released on %s, too old to announce", s.ID, s.ReleaseAt.Format(time.RFC3339))
		} else {
			for _, u := range users {
				notify(u, s)
			}
			announced++
			log.Printf("[RELEASE-SCHEDULER] Announced season %d to %d user(s)", s.ID, len(users))
		}

		if err := db.Model(&season.Season{}).Where("id = ?", s.ID).Update("release_notified", true).Error; err != nil {
			log.Printf("[RELEASE-SCHEDULER] Error marking season %d notified: %v", s.ID, err)
		}
	}
	return announced, nil
}
