package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"nextlevel/database/dbtest"
	"nextlevel/models"
	"nextlevel/models/season"
	"nextlevel/services/apperr"
	"nextlevel/services/fixture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type memStorage struct {
	mu      sync.Mutex
	deleted []string
	fail    bool
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.fail {
		return errors.New("storage unavailable")
	}
	return nil
}

var (
	learner = models.Principal{UserID: 1, Role: models.RoleUser}
	admin   = models.Principal{UserID: 2, Role: models.RoleAdmin}
)

func TestLearnerSeesOnlyAvailableSeasons(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(db, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	seasons := []season.Season{
		{Title: "Released", Status: season.StatusPublished, IsVisible: true, OrderIndex: 2, ReleaseAt: &past},
		{Title: "Open", Status: season.StatusPublished, IsVisible: true, OrderIndex: 1},
		{Title: "Scheduled", Status: season.StatusPublished, IsVisible: true, ReleaseAt: &future},
		{Title: "Hidden", Status: season.StatusPublished, IsVisible: false},
		{Title: "Draft", Status: season.StatusDraft, IsVisible: true},
	}
	for i := range seasons {
		require.NoError(t, c.CreateSeason(ctx, &seasons[i]))
	}

	got, err := c.ListSeasons(ctx, learner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Open", got[0].Title)
	assert.Equal(t, "Released", got[1].Title)

	all, err := c.ListSeasons(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = c.GetSeason(ctx, learner, seasons[2].ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = c.GetSeason(ctx, admin, seasons[4].ID)
	assert.NoError(t, err)
	_, err = c.GetSeason(ctx, learner, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestLearnerSeesOnlyPublishedEpisodes(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	s := fixture.Season(t, db)
	pub := fixture.Episode(t, db, s.ID, season.StatusPublished, 60)
	draft := fixture.Episode(t, db, s.ID, season.StatusDraft, 60)

	eps, err := c.ListEpisodes(ctx, learner, s.ID)
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, pub.ID, eps[0].ID)

	_, err = c.GetEpisode(ctx, learner, draft.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	detail, err := c.GetEpisode(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, detail.ID)
}

func TestCreateEpisodeAppendsAndRejectsTakenPosition(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	s := fixture.Season(t, db)

	first := season.Episode{SeasonID: s.ID, Title: "One"}
	require.NoError(t, c.CreateEpisode(ctx, &first))
	assert.Equal(t, 1, first.OrderIndex)
	assert.Equal(t, season.StatusDraft, first.Status)

	second := season.Episode{SeasonID: s.ID, Title: "Two"}
	require.NoError(t, c.CreateEpisode(ctx, &second))
	assert.Equal(t, 2, second.OrderIndex)

	clash := season.Episode{SeasonID: s.ID, Title: "Clash", OrderIndex: 2}
	err := c.CreateEpisode(ctx, &clash)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	pos := 1
	_, err = c.UpdateEpisode(ctx, second.ID, EpisodePatch{OrderIndex: &pos})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	orphan := season.Episode{SeasonID: 999, Title: "Orphan"}
	assert.True(t, errors.Is(c.CreateEpisode(ctx, &orphan), apperr.ErrNotFound))
}

func TestReorderEpisodesSwapsPositions(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	s := fixture.Season(t, db)
	a := fixture.Episode(t, db, s.ID, season.StatusPublished, 60)
	b := fixture.Episode(t, db, s.ID, season.StatusPublished, 60)

	require.NoError(t, c.ReorderEpisodes(ctx, s.ID, []uint{b.ID, a.ID}))

	eps, err := c.ListEpisodes(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, a.ID}, []uint{eps[0].ID, eps[1].ID})

	err = c.ReorderEpisodes(ctx, s.ID, []uint{a.ID})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestReorderAndDuplicateSeasons(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	a := fixture.Season(t, db)
	b := fixture.Season(t, db)
	fixture.Episode(t, db, a.ID, season.StatusPublished, 60)

	require.NoError(t, c.ReorderSeasons(ctx, []uint{b.ID, a.ID}))
	got, err := c.ListSeasons(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got[0].ID)

	dup, err := c.DuplicateSeason(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Season (Copy)", dup.Title)
	assert.Equal(t, season.StatusDraft, dup.Status)
	assert.Equal(t, 3, dup.OrderIndex)

	eps, err := c.ListEpisodes(ctx, admin, dup.ID)
	require.NoError(t, err)
	assert.Empty(t, eps)
}

func TestUpdateSeasonRearmsReleaseNotification(t *testing.T) {
	db := dbtest.Open(t)
	storage := &memStorage{}
	c := New(db, storage)
	ctx := context.Background()
	s := season.Season{Title: "S", Status: season.StatusPublished, IsVisible: true, CoverKey: "covers/old.png", ReleaseNotified: true}
	require.NoError(t, c.CreateSeason(ctx, &s))

	release := time.Now().Add(24 * time.Hour)
	key := "covers/new.png"
	got, err := c.UpdateSeason(ctx, s.ID, SeasonPatch{ReleaseAt: &release, CoverKey: &key})
	require.NoError(t, err)

	assert.False(t, got.ReleaseNotified)
	require.NotNil(t, got.ReleaseAt)
	assert.Equal(t, []string{"covers/old.png"}, storage.deleted)
}

func TestCreateExamOncePerSeason(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	s := fixture.Season(t, db)

	ex := season.Exam{
		SeasonID: s.ID, Title: "Final", AttemptsAllowed: 3, PassThreshold: 70, RevealAnswers: true,
		Questions: []season.Question{
			{Prompt: "2+2?", Weight: 2, Options: []season.Option{{Text: "3"}, {Text: "4", IsCorrect: true}}},
			{Prompt: "Sky?", Options: []season.Option{{Text: "Blue", IsCorrect: true}, {Text: "Green"}}},
		},
	}
	require.NoError(t, c.CreateExam(ctx, &ex))
	require.Len(t, ex.Questions, 2)
	assert.Equal(t, 1, ex.Questions[0].OrderIndex)
	assert.Equal(t, 2, ex.Questions[1].OrderIndex)
	assert.Equal(t, 1, ex.Questions[1].Weight)
	assert.Equal(t, "B", ex.Questions[0].Options[1].Label)

	again := season.Exam{SeasonID: s.ID, Title: "Again", AttemptsAllowed: 1, PassThreshold: 50}
	err := c.CreateExam(ctx, &again)
	assert.True(t, errors.Is(err, apperr.ErrExamExists))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUpdateExamValidatesKnobs(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	s := fixture.Season(t, db)
	ex := fixture.Exam(t, db, s.ID, 3, 70, true, fixture.QuestionSpec{Weight: 1, Correct: 0})

	zero := 0
	_, err := c.UpdateExam(ctx, ex.ID, ExamPatch{AttemptsAllowed: &zero})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	threshold := 85.5
	reveal := false
	got, err := c.UpdateExam(ctx, ex.ID, ExamPatch{PassThreshold: &threshold, RevealAnswers: &reveal})
	require.NoError(t, err)
	assert.Equal(t, 85.5, got.PassThreshold)
	assert.False(t, got.RevealAnswers)
}

func TestAddAndDeleteQuestion(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	s := fixture.Season(t, db)
	ex := fixture.Exam(t, db, s.ID, 3, 70, true, fixture.QuestionSpec{Weight: 1, Correct: 0})

	q := season.Question{ExamID: ex.ID, Prompt: "New", Weight: 3, Options: []season.Option{{Text: "x", IsCorrect: true}}}
	require.NoError(t, c.AddQuestion(ctx, &q))
	assert.Equal(t, 2, q.OrderIndex)
	assert.NotZero(t, q.Options[0].ID)

	require.NoError(t, c.DeleteQuestion(ctx, q.ID))
	var n int64
	require.NoError(t, db.Unscoped().Model(&season.Option{}).Where("question_id = ?", q.ID).Count(&n).Error)
	assert.Zero(t, n)

	bad := season.Question{ExamID: 999, Prompt: "?"}
	assert.True(t, errors.Is(c.AddQuestion(ctx, &bad), apperr.ErrNotFound))
}

func TestDeleteSeasonCascades(t *testing.T) {
	db := dbtest.Open(t)
	storage := &memStorage{fail: true}
	c := New(db, storage)
	ctx := context.Background()

	s := season.Season{Title: "Doomed", Status: season.StatusPublished, IsVisible: true, CoverKey: "covers/doomed.png"}
	require.NoError(t, c.CreateSeason(ctx, &s))
	ep := season.Episode{SeasonID: s.ID, Title: "E", Status: season.StatusPublished, MediaKey: "media/e.mp4"}
	require.NoError(t, c.CreateEpisode(ctx, &ep))
	require.NoError(t, c.AddAttachment(ctx, &season.EpisodeAttachment{EpisodeID: ep.ID, Type: season.AttachmentPDF, FileName: "notes.pdf", URL: "https://cdn/notes.pdf", ObjectKey: "files/notes.pdf"}))

	user := fixture.User(t, db, models.RoleUser)
	fixture.Watch(t, db, user.ID, ep)
	ex := fixture.Exam(t, db, s.ID, 3, 70, true, fixture.QuestionSpec{Weight: 1, Correct: 0})
	attempt := season.Attempt{UserID: user.ID, ExamID: ex.ID, AttemptNumber: 1, Answers: datatypes.NewJSONType(season.Answers{}), Score: 100, Passed: true}
	require.NoError(t, db.Create(&attempt).Error)
	require.NoError(t, db.Create(&season.Certificate{UserID: user.ID, ExamID: ex.ID, AttemptID: attempt.ID, CertificateNumber: "C-1", IssuedAt: time.Now()}).Error)

	// storage failures never undo the delete
	require.NoError(t, c.DeleteSeason(ctx, s.ID))

	for _, model := range []interface{}{
		&season.Season{}, &season.Episode{}, &season.EpisodeAttachment{}, &season.EpisodeProgress{},
		&season.Exam{}, &season.Question{}, &season.Option{}, &season.Attempt{}, &season.Certificate{},
	} {
		var n int64
		require.NoError(t, db.Unscoped().Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T left behind", model)
	}

	sort.Strings(storage.deleted)
	assert.Equal(t, []string{"covers/doomed.png", "files/notes.pdf", "media/e.mp4"}, storage.deleted)

	assert.True(t, errors.Is(c.DeleteSeason(ctx, s.ID), apperr.ErrNotFound))
}

func TestDeleteEpisodeKeepsSiblings(t *testing.T) {
	db := dbtest.Open(t)
	c := New(db, nil)
	ctx := context.Background()
	s := fixture.Season(t, db)
	keep := fixture.Episode(t, db, s.ID, season.StatusPublished, 60)
	drop := fixture.Episode(t, db, s.ID, season.StatusPublished, 60)
	user := fixture.User(t, db, models.RoleUser)
	fixture.Watch(t, db, user.ID, keep, drop)

	require.NoError(t, c.DeleteEpisode(ctx, drop.ID))

	var progress []season.EpisodeProgress
	require.NoError(t, db.Find(&progress).Error)
	require.Len(t, progress, 1)
	assert.Equal(t, keep.ID, progress[0].EpisodeID)
}
