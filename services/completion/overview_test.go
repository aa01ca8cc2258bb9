package completion

import (
	"context"
	"testing"
	"time"

	"nextlevel/models/season"
	"nextlevel/services/fixture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestOverviewAggregatesAvailableSeasons(t *testing.T) {
	db, ev, user := setup(t)
	ctx := context.Background()
	now := time.Now()

	done := fixture.Season(t, db)
	d1 := fixture.Episode(t, db, done.ID, season.StatusPublished, 100)
	ex := fixture.Exam(t, db, done.ID, 3, 70, true, fixture.QuestionSpec{Weight: 1, Correct: 0})
	fixture.Watch(t, db, user.ID, d1)
	require.NoError(t, db.Model(&season.EpisodeProgress{}).Where("episode_id = ?", d1.ID).Update("elapsed_seconds", 100).Error)
	require.NoError(t, db.Create(&season.Attempt{UserID: user.ID, ExamID: ex.ID, AttemptNumber: 1, Answers: datatypes.NewJSONType(season.Answers{}), Score: 90, Passed: true}).Error)

	open := fixture.Season(t, db)
	fixture.Episode(t, db, open.ID, season.StatusPublished, 100)
	o2 := fixture.Episode(t, db, open.ID, season.StatusPublished, 100)
	fixture.Watch(t, db, user.ID, o2)

	draft := season.Season{Title: "Draft", Status: season.StatusDraft, IsVisible: true}
	require.NoError(t, db.Create(&draft).Error)

	ov, err := ev.Overview(ctx, user.ID, now)
	require.NoError(t, err)

	require.Len(t, ov.Seasons, 2)
	assert.Equal(t, 1, ov.SeasonsCompleted)
	assert.Equal(t, 3, ov.TotalEpisodes)
	assert.Equal(t, 2, ov.CompletedEpisodes)
	assert.Equal(t, int64(100), ov.SecondsWatched)
	assert.Equal(t, 1, ov.ExamsPassed)

	first := ov.Seasons[0]
	assert.True(t, first.ExamUnlocked)
	assert.True(t, first.ExamPassed)
	require.NotNil(t, first.BestScore)
	assert.Equal(t, 90.0, *first.BestScore)

	second := ov.Seasons[1]
	assert.Nil(t, second.ExamID)
	assert.Equal(t, 50.0, second.Percent)
	assert.False(t, second.Completed())
}
