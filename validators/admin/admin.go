package adminValidator

import (
	"strings"
	"time"

	"nextlevel/models/season"
	"nextlevel/services/account"
	"nextlevel/services/catalog"
	"nextlevel/validators"

	"github.com/gofiber/fiber/v2"
)

// Defaults applied when a new exam omits them.
const (
	DefaultAttemptsAllowed = 3
	DefaultPassThreshold   = 70.0
)

// ============ Season ============

type CreateSeasonRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description"`
	OrderIndex  int        `json:"order_index" validate:"gte=0"`
	Mantra      string     `json:"mantra"`
	CoverURL    string     `json:"cover_url" validate:"omitempty,url"`
	CoverKey    string     `json:"cover_key"`
	Status      string     `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	ReleaseAt   *time.Time `json:"release_at"`
	IsVisible   *bool      `json:"is_visible"`
}

func (r *CreateSeasonRequest) ToModel() season.Season {
	visible := true
	if r.IsVisible != nil {
		visible = *r.IsVisible
	}
	return season.Season{
		Title:       r.Title,
		Description: r.Description,
		OrderIndex:  r.OrderIndex,
		Mantra:      r.Mantra,
		CoverURL:    r.CoverURL,
		CoverKey:    r.CoverKey,
		Status:      r.Status,
		ReleaseAt:   r.ReleaseAt,
		IsVisible:   visible,
	}
}

type UpdateSeasonRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description    *string    `json:"description"`
	OrderIndex     *int       `json:"order_index" validate:"omitempty,gte=0"`
	Mantra         *string    `json:"mantra"`
	CoverURL       *string    `json:"cover_url" validate:"omitempty,url"`
	CoverKey       *string    `json:"cover_key"`
	Status         *string    `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	ReleaseAt      *time.Time `json:"release_at"`
	ClearReleaseAt bool       `json:"clear_release_at"`
	IsVisible      *bool      `json:"is_visible"`
}

func (r *UpdateSeasonRequest) ToPatch() catalog.SeasonPatch {
	return catalog.SeasonPatch{
		Title:          r.Title,
		Description:    r.Description,
		OrderIndex:     r.OrderIndex,
		Mantra:         r.Mantra,
		CoverURL:       r.CoverURL,
		CoverKey:       r.CoverKey,
		Status:         r.Status,
		ReleaseAt:      r.ReleaseAt,
		ClearReleaseAt: r.ClearReleaseAt,
		IsVisible:      r.IsVisible,
	}
}

type ReorderRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
}

func CreateSeason() fiber.Handler {
	return validators.JSON("validatedSeason", func(r *CreateSeasonRequest) {
		r.Title = strings.TrimSpace(r.Title)
	})
}

func UpdateSeason() fiber.Handler {
	return validators.JSON[UpdateSeasonRequest]("validatedSeasonUpdate", nil)
}

func Reorder() fiber.Handler {
	return validators.JSON[ReorderRequest]("validatedOrder", nil)
}

// ============ Episode ============

type CreateEpisodeRequest struct {
	Title           string `json:"title" validate:"required,min=3,max=200"`
	Description     string `json:"description"`
	OrderIndex      int    `json:"order_index" validate:"gte=0"`
	DurationSeconds *int   `json:"duration_seconds" validate:"omitempty,gt=0"`
	AudioURL        string `json:"audio_url" validate:"omitempty,url"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	ThumbnailURL    string `json:"thumbnail_url" validate:"omitempty,url"`
	MediaKey        string `json:"media_key"`
	Transcript      string `json:"transcript"`
	Status          string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

func (r *CreateEpisodeRequest) ToModel(seasonID uint) season.Episode {
	return season.Episode{
		SeasonID:        seasonID,
		OrderIndex:      r.OrderIndex,
		Title:           r.Title,
		Description:     r.Description,
		DurationSeconds: r.DurationSeconds,
		AudioURL:        r.AudioURL,
		VideoURL:        r.VideoURL,
		ThumbnailURL:    r.ThumbnailURL,
		MediaKey:        r.MediaKey,
		Transcript:      r.Transcript,
		Status:          r.Status,
	}
}

type UpdateEpisodeRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description     *string `json:"description"`
	OrderIndex      *int    `json:"order_index" validate:"omitempty,gte=0"`
	DurationSeconds *int    `json:"duration_seconds" validate:"omitempty,gt=0"`
	AudioURL        *string `json:"audio_url" validate:"omitempty,url"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url"`
	ThumbnailURL    *string `json:"thumbnail_url" validate:"omitempty,url"`
	MediaKey        *string `json:"media_key"`
	Transcript      *string `json:"transcript"`
	Status          *string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

func (r *UpdateEpisodeRequest) ToPatch() catalog.EpisodePatch {
	return catalog.EpisodePatch{
		Title:           r.Title,
		Description:     r.Description,
		OrderIndex:      r.OrderIndex,
		DurationSeconds: r.DurationSeconds,
		AudioURL:        r.AudioURL,
		VideoURL:        r.VideoURL,
		ThumbnailURL:    r.ThumbnailURL,
		MediaKey:        r.MediaKey,
		Transcript:      r.Transcript,
		Status:          r.Status,
	}
}

type AttachmentRequest struct {
	Type       string `json:"type" validate:"required,oneof=PDF IMAGE DOCUMENT AUDIO"`
	FileName   string `json:"file_name" validate:"required,max=255"`
	URL        string `json:"url" validate:"required,url"`
	ObjectKey  string `json:"object_key"`
	SizeBytes  int64  `json:"size_bytes" validate:"gte=0"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

func (r *AttachmentRequest) ToModel(episodeID uint) season.EpisodeAttachment {
	return season.EpisodeAttachment{
		EpisodeID:  episodeID,
		Type:       r.Type,
		FileName:   r.FileName,
		URL:        r.URL,
		ObjectKey:  r.ObjectKey,
		SizeBytes:  r.SizeBytes,
		OrderIndex: r.OrderIndex,
	}
}

func CreateEpisode() fiber.Handler {
	return validators.JSON("validatedEpisode", func(r *CreateEpisodeRequest) {
		r.Title = strings.TrimSpace(r.Title)
	})
}

func UpdateEpisode() fiber.Handler {
	return validators.JSON[UpdateEpisodeRequest]("validatedEpisodeUpdate", nil)
}

func CreateAttachment() fiber.Handler {
	return validators.JSON("validatedAttachment", func(r *AttachmentRequest) {
		r.Type = strings.ToUpper(r.Type)
	})
}

// ============ Exam ============

type OptionRequest struct {
	Label      string `json:"label" validate:"max=4"`
	Text       string `json:"text" validate:"required"`
	IsCorrect  bool   `json:"is_correct"`
	Feedback   string `json:"feedback"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

type QuestionRequest struct {
	Prompt     string          `json:"prompt" validate:"required"`
	OrderIndex int             `json:"order_index" validate:"gte=0"`
	Weight     int             `json:"weight" validate:"gte=0"`
	Options    []OptionRequest `json:"options" validate:"required,min=2,dive"`
}

func (r *QuestionRequest) ToModel(examID uint) season.Question {
	q := season.Question{ExamID: examID, Prompt: r.Prompt, OrderIndex: r.OrderIndex, Weight: r.Weight}
	for _, o := range r.Options {
		q.Options = append(q.Options, season.Option{
			Label:      o.Label,
			Text:       o.Text,
			IsCorrect:  o.IsCorrect,
			Feedback:   o.Feedback,
			OrderIndex: o.OrderIndex,
		})
	}
	return q
}

type CreateExamRequest struct {
	Title            string            `json:"title" validate:"required,min=3,max=200"`
	Description      string            `json:"description"`
	AttemptsAllowed  *int              `json:"attempts_allowed" validate:"omitempty,gte=1"`
	PassThreshold    *float64          `json:"pass_threshold" validate:"omitempty,gte=0,lte=100"`
	TimeLimitMinutes *int              `json:"time_limit_minutes" validate:"omitempty,gt=0"`
	RevealAnswers    *bool             `json:"reveal_answers"`
	Questions        []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// ToModel builds the exam, applying 3 attempts, a 70% threshold and
// revealed answers where the request is silent.
func (r *CreateExamRequest) ToModel(seasonID uint) season.Exam {
	ex := season.Exam{
		SeasonID:         seasonID,
		Title:            r.Title,
		Description:      r.Description,
		AttemptsAllowed:  DefaultAttemptsAllowed,
		PassThreshold:    DefaultPassThreshold,
		TimeLimitMinutes: r.TimeLimitMinutes,
		RevealAnswers:    true,
	}
	if r.AttemptsAllowed != nil {
		ex.AttemptsAllowed = *r.AttemptsAllowed
	}
	if r.PassThreshold != nil {
		ex.PassThreshold = *r.PassThreshold
	}
	if r.RevealAnswers != nil {
		ex.RevealAnswers = *r.RevealAnswers
	}
	for i := range r.Questions {
		ex.Questions = append(ex.Questions, r.Questions[i].ToModel(0))
	}
	return ex
}

type UpdateExamRequest struct {
	Title            *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string  `json:"description"`
	AttemptsAllowed  *int     `json:"attempts_allowed" validate:"omitempty,gte=1"`
	PassThreshold    *float64 `json:"pass_threshold" validate:"omitempty,gte=0,lte=100"`
	TimeLimitMinutes *int     `json:"time_limit_minutes" validate:"omitempty,gt=0"`
	ClearTimeLimit   bool     `json:"clear_time_limit"`
	RevealAnswers    *bool    `json:"reveal_answers"`
}

func (r *UpdateExamRequest) ToPatch() catalog.ExamPatch {
	return catalog.ExamPatch{
		Title:            r.Title,
		Description:      r.Description,
		AttemptsAllowed:  r.AttemptsAllowed,
		PassThreshold:    r.PassThreshold,
		TimeLimitMinutes: r.TimeLimitMinutes,
		ClearTimeLimit:   r.ClearTimeLimit,
		RevealAnswers:    r.RevealAnswers,
	}
}

func CreateExam() fiber.Handler {
	return validators.JSON("validatedExam", func(r *CreateExamRequest) {
		r.Title = strings.TrimSpace(r.Title)
	})
}

func UpdateExam() fiber.Handler {
	return validators.JSON[UpdateExamRequest]("validatedExamUpdate", nil)
}

func CreateQuestion() fiber.Handler {
	return validators.JSON[QuestionRequest]("validatedQuestion", nil)
}

// ============ Users ============

type UserListRequest struct {
	validators.PageRequest
	Status string `query:"status" json:"status" validate:"omitempty,oneof=PENDING ACTIVE INACTIVE"`
}

func UserList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserListRequest)
		if ok, err := validators.Query(c, reqData); !ok {
			return err
		}
		reqData.ApplyDefaults()
		reqData.Status = strings.ToUpper(reqData.Status)

		c.Locals("validatedUserList", reqData)
		return c.Next()
	}
}

type UpdateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=3,max=120"`
	EmployeeID *string `json:"employee_id" validate:"omitempty,max=40"`
	Area       *string `json:"area" validate:"omitempty,max=120"`
	JobTitle   *string `json:"job_title" validate:"omitempty,max=120"`
	Status     *string `json:"status" validate:"omitempty,oneof=PENDING ACTIVE INACTIVE"`
	Role       *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

func (r *UpdateUserRequest) ToPatch() account.AdminPatch {
	return account.AdminPatch{
		Name:       r.Name,
		EmployeeID: r.EmployeeID,
		Area:       r.Area,
		JobTitle:   r.JobTitle,
		Status:     r.Status,
		Role:       r.Role,
	}
}

func UpdateUser() fiber.Handler {
	return validators.JSON[UpdateUserRequest]("validatedUserUpdate", nil)
}
