package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"nextlevel/config"
	examController "nextlevel/controllers/exam"
	"nextlevel/database"
	"nextlevel/database/dbtest"
	"nextlevel/middleware"
	"nextlevel/models"
	"nextlevel/services/certification"
	"nextlevel/services/fixture"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pdfRenderer struct{}

func (pdfRenderer) Render(_ context.Context, f certification.Fields) ([]byte, error) {
	return []byte("%PDF " + f.StudentName), nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *fiber.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret", JWTTTLHours: 1, SaltRound: 4, UploadDir: t.TempDir()}
	database.Database.Db = dbtest.Open(t)
	examController.Renderer = pdfRenderer{}
	t.Cleanup(func() { examController.Renderer = nil })

	return &harness{t: t, app: NewApp(5*time.Second, config.AppConfig.UploadDir)}
}

func (h *harness) token(u models.User) string {
	h.t.Helper()
	tok, err := middleware.GenerateJWT(u.ID, u.Role)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, token string, body interface{}) (int, envelope, []byte) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)

	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, raw
}

func decode(t *testing.T, raw json.RawMessage, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, into))
}

func TestSignupNeedsApprovalBeforeLogin(t *testing.T) {
	h := newHarness(t)
	admin := fixture.User(t, database.Database.Db, models.RoleAdmin)

	status, env, _ := h.do("POST", "/auth/signup", "", fiber.Map{
		"name":     "Ana Torres",
		"email":    "Ana@Example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var created models.User
	decode(t, env.Data, &created)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, models.UserPending, created.Status)

	login := fiber.Map{"email": "ana@example.com", "password": "s3cret-pass"}
	status, env, _ = h.do("POST", "/auth/login", "", login)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.JSONEq(t, `{"code":"ACCOUNT_NOT_ACTIVE"}`, string(env.Data))

	status, _, _ = h.do("POST", fmt.Sprintf("/admin/users/%d/approve", created.ID), h.token(admin), nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _, _ = h.do("POST", "/auth/login", "", fiber.Map{"email": "ana@example.com", "password": "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env, _ = h.do("POST", "/auth/login", "", login)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var session struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, env.Data, &session)
	assert.NotEmpty(t, session.Token)

	status, env, _ = h.do("GET", "/auth/login/history", session.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var history struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	decode(t, env.Data, &history)
	assert.EqualValues(t, 1, history.Pagination.Total)
}

func TestValidationFailuresReportFields(t *testing.T) {
	h := newHarness(t)

	status, env, _ := h.do("POST", "/auth/signup", "", fiber.Map{"email": "nope", "password": "short"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	var fields map[string]string
	decode(t, env.Data, &fields)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	learner := h.token(fixture.User(t, database.Database.Db, models.RoleUser))
	status, env, _ = h.do("POST", "/exams/1/submit", learner, fiber.Map{"answers": fiber.Map{"01": 3}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	fields = nil
	decode(t, env.Data, &fields)
	assert.NotEmpty(t, fields)
}

func TestAdminRoutesRejectLearners(t *testing.T) {
	h := newHarness(t)
	learner := fixture.User(t, database.Database.Db, models.RoleUser)

	status, _, _ := h.do("GET", "/admin/dashboard/stats", h.token(learner), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = h.do("GET", "/admin/dashboard/stats", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = h.do("GET", "/seasons/abc", h.token(learner), nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSeasonToCertificateJourney(t *testing.T) {
	h := newHarness(t)
	db := database.Database.Db
	admin := h.token(fixture.User(t, db, models.RoleAdmin))
	learnerUser := fixture.User(t, db, models.RoleUser)
	learner := h.token(learnerUser)

	// build the season as an administrator
	status, env, _ := h.do("POST", "/admin/seasons", admin, fiber.Map{"title": "Season One", "status": "PUBLISHED"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var s struct {
		ID        uint `json:"ID"`
		IsVisible bool `json:"is_visible"`
	}
	decode(t, env.Data, &s)
	assert.True(t, s.IsVisible)

	status, env, _ = h.do("POST", fmt.Sprintf("/admin/seasons/%d/episodes", s.ID), admin, fiber.Map{
		"title": "Opening", "status": "PUBLISHED", "duration_seconds": 100,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var ep struct {
		ID uint `json:"ID"`
	}
	decode(t, env.Data, &ep)

	status, env, _ = h.do("POST", fmt.Sprintf("/admin/seasons/%d/exam", s.ID), admin, fiber.Map{
		"title": "Final exam",
		"questions": []fiber.Map{{
			"prompt": "Pick the first",
			"options": []fiber.Map{
				{"text": "first", "is_correct": true},
				{"text": "second"},
			},
		}},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var ex struct {
		ID              uint    `json:"ID"`
		AttemptsAllowed int     `json:"attempts_allowed"`
		PassThreshold   float64 `json:"pass_threshold"`
		RevealAnswers   bool    `json:"reveal_answers"`
		Questions       []struct {
			ID      uint `json:"ID"`
			Options []struct {
				ID        uint `json:"ID"`
				IsCorrect bool `json:"is_correct"`
			} `json:"options"`
		} `json:"questions"`
	}
	decode(t, env.Data, &ex)
	assert.Equal(t, 3, ex.AttemptsAllowed)
	assert.Equal(t, 70.0, ex.PassThreshold)
	assert.True(t, ex.RevealAnswers)
	require.Len(t, ex.Questions, 1)
	require.Len(t, ex.Questions[0].Options, 2)
	correct := ex.Questions[0].Options[0].ID
	require.True(t, ex.Questions[0].Options[0].IsCorrect)

	// locked until the episode is watched
	status, env, _ = h.do("GET", fmt.Sprintf("/seasons/%d/exam", s.ID), learner, nil)
	require.Equal(t, fiber.StatusOK, status)
	var st certification.Status
	decode(t, env.Data, &st)
	assert.Equal(t, "EXAM_LOCKED", st.BlockReason)

	answers := fiber.Map{"answers": fiber.Map{fmt.Sprint(ex.Questions[0].ID): correct}}
	status, env, _ = h.do("POST", fmt.Sprintf("/exams/%d/submit", ex.ID), learner, answers)
	assert.Equal(t, fiber.StatusPreconditionFailed, status)
	assert.JSONEq(t, `{"code":"EXAM_LOCKED"}`, string(env.Data))

	status, env, _ = h.do("PUT", fmt.Sprintf("/episodes/%d/progress", ep.ID), learner, fiber.Map{"elapsed_seconds": 95})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var row struct {
		Watched bool `json:"watched"`
	}
	decode(t, env.Data, &row)
	assert.True(t, row.Watched)

	status, env, _ = h.do("GET", fmt.Sprintf("/seasons/%d/progress", s.ID), learner, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var seasonProgress struct {
		Episodes []struct {
			EpisodeID uint `json:"episode_id"`
			Watched   bool `json:"watched"`
		} `json:"episodes"`
		Total        int     `json:"total"`
		Completed    int     `json:"completed"`
		Percent      float64 `json:"percent"`
		ExamUnlocked bool    `json:"exam_unlocked"`
	}
	decode(t, env.Data, &seasonProgress)
	require.Len(t, seasonProgress.Episodes, 1)
	assert.Equal(t, ep.ID, seasonProgress.Episodes[0].EpisodeID)
	assert.True(t, seasonProgress.Episodes[0].Watched)
	assert.Equal(t, 1, seasonProgress.Total)
	assert.Equal(t, 1, seasonProgress.Completed)
	assert.Equal(t, 100.0, seasonProgress.Percent)
	assert.True(t, seasonProgress.ExamUnlocked)

	// the learner view never carries answer keys
	status, _, raw := h.do("GET", fmt.Sprintf("/exams/%d", ex.ID), learner, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(raw), "is_correct")

	status, env, _ = h.do("POST", fmt.Sprintf("/exams/%d/submit", ex.ID), learner, answers)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var res struct {
		AttemptID    uint    `json:"attempt_id"`
		ScorePercent float64 `json:"score_percent"`
		Passed       bool    `json:"passed"`
	}
	decode(t, env.Data, &res)
	assert.True(t, res.Passed)
	assert.Equal(t, 100.0, res.ScorePercent)

	status, env, _ = h.do("POST", fmt.Sprintf("/exams/%d/submit", ex.ID), learner, answers)
	assert.Equal(t, fiber.StatusPreconditionFailed, status)
	assert.JSONEq(t, `{"code":"ALREADY_CERTIFIED"}`, string(env.Data))

	status, _, raw = h.do("GET", fmt.Sprintf("/exams/%d/attempts/%d/certificate", ex.ID, res.AttemptID), learner, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "%PDF "+learnerUser.Name, string(raw))

	status, env, _ = h.do("GET", "/progress", learner, nil)
	require.Equal(t, fiber.StatusOK, status)
	var overview struct {
		SeasonsCompleted int `json:"seasons_completed"`
		ExamsPassed      int `json:"exams_passed"`
	}
	decode(t, env.Data, &overview)
	assert.Equal(t, 1, overview.SeasonsCompleted)
	assert.Equal(t, 1, overview.ExamsPassed)
}

func TestCertificateHeaders(t *testing.T) {
	h := newHarness(t)
	db := database.Database.Db
	learner := fixture.User(t, db, models.RoleUser)
	s := fixture.Season(t, db)
	ex := fixture.Exam(t, db, s.ID, 3, 70, true, fixture.QuestionSpec{Weight: 1, Correct: 0})
	ep := fixture.Episode(t, db, s.ID, "PUBLISHED", 60)
	fixture.Watch(t, db, learner.ID, ep)

	answers := fiber.Map{"answers": fixture.CorrectAnswers(ex)}
	status, env, _ := h.do("POST", fmt.Sprintf("/exams/%d/submit", ex.ID), h.token(learner), answers)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var res struct {
		AttemptID uint `json:"attempt_id"`
	}
	decode(t, env.Data, &res)

	req := httptest.NewRequest("GET", fmt.Sprintf("/exams/%d/attempts/%d/certificate", ex.ID, res.AttemptID), nil)
	req.Header.Set("Authorization", "Bearer "+h.token(learner))
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "certificate-")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	other := fixture.User(t, db, models.RoleUser)
	status, _, _ = h.do("GET", fmt.Sprintf("/exams/%d/attempts/%d/certificate", ex.ID, res.AttemptID), h.token(other), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestProfileAndAvatar(t *testing.T) {
	h := newHarness(t)
	learner := h.token(fixture.User(t, database.Database.Db, models.RoleUser))

	status, env, _ := h.do("PUT", "/user/profile", learner, fiber.Map{"job_title": "Store manager"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var u models.User
	decode(t, env.Data, &u)
	assert.Equal(t, "Store manager", u.JobTitle)

	upload := func(name string) (int, envelope) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("avatar", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("image-bytes"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest("POST", "/user/avatar", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+learner)
		resp, err := h.app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		var env envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		return resp.StatusCode, env
	}

	status, _ = upload("script.sh")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = upload("me.PNG")
	require.Equal(t, fiber.StatusOK, status, env.Message)
	decode(t, env.Data, &u)
	assert.Regexp(t, `^/uploads/avatars/[0-9a-f-]+\.png$`, u.AvatarURL)

	status, _, raw := h.do("GET", u.AvatarURL, "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "image-bytes", string(raw))
}

func TestRefreshResetAndAccountRemoval(t *testing.T) {
	h := newHarness(t)
	db := database.Database.Db
	admin := fixture.User(t, db, models.RoleAdmin)
	adminToken := h.token(admin)

	status, env, _ := h.do("POST", "/auth/signup", "", fiber.Map{"name": "Ana Torres", "email": "ana@example.com", "password": "s3cret-pass"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var learner models.User
	decode(t, env.Data, &learner)
	status, _, _ = h.do("POST", fmt.Sprintf("/admin/users/%d/approve", learner.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, env, _ = h.do("POST", "/auth/login", "", fiber.Map{"email": "ana@example.com", "password": "s3cret-pass"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var session struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	decode(t, env.Data, &session)
	require.NotEmpty(t, session.RefreshToken)

	// refresh tokens only work on the refresh endpoint
	status, _, _ = h.do("GET", "/auth/me", session.RefreshToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, env, _ = h.do("POST", "/auth/refresh", "", fiber.Map{"refresh_token": session.Token})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.JSONEq(t, `{"code":"INVALID_TOKEN"}`, string(env.Data))

	status, env, _ = h.do("POST", "/auth/refresh", "", fiber.Map{"refresh_token": session.RefreshToken})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	decode(t, env.Data, &session)
	status, _, _ = h.do("GET", "/auth/me", session.Token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// unknown and known addresses get the same answer
	_, unknown, _ := h.do("POST", "/auth/forgot-password", "", fiber.Map{"email": "nobody@example.com"})
	_, known, _ := h.do("POST", "/auth/forgot-password", "", fiber.Map{"email": "ana@example.com"})
	assert.True(t, unknown.Status)
	assert.Equal(t, unknown.Message, known.Message)

	status, env, _ = h.do("POST", "/auth/reset-password", "", fiber.Map{"token": "bogus", "new_password": "another-pass"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"code":"INVALID_TOKEN"}`, string(env.Data))

	status, env, _ = h.do("PUT", fmt.Sprintf("/admin/users/%d", learner.ID), adminToken, fiber.Map{"job_title": "Supervisor", "role": "OWNER"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	status, env, _ = h.do("PUT", fmt.Sprintf("/admin/users/%d", learner.ID), adminToken, fiber.Map{"job_title": "Supervisor"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var updated models.User
	decode(t, env.Data, &updated)
	assert.Equal(t, "Supervisor", updated.JobTitle)

	status, env, _ = h.do("DELETE", fmt.Sprintf("/admin/users/%d", admin.ID), adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"code":"SELF_ACTION"}`, string(env.Data))

	s := fixture.Season(t, db)
	ep := fixture.Episode(t, db, s.ID, "PUBLISHED", 60)
	fixture.Watch(t, db, learner.ID, ep)

	status, env, _ = h.do("DELETE", fmt.Sprintf("/admin/users/%d", learner.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var remaining int64
	require.NoError(t, db.Table("episode_progress").Where("user_id = ?", learner.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	status, _, _ = h.do("GET", "/auth/me", session.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _, _ = h.do("POST", "/auth/refresh", "", fiber.Map{"refresh_token": session.RefreshToken})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
