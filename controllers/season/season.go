package seasonController

import (
	"time"

	"nextlevel/database"
	"nextlevel/middleware"
	"nextlevel/services/catalog"
	"nextlevel/services/completion"
	"nextlevel/services/progress"
	"nextlevel/utils"
	seasonValidator "nextlevel/validators/season"

	"github.com/gofiber/fiber/v2"
)

func seasons() *catalog.Catalog {
	return catalog.New(database.Database.Db, utils.ConfiguredStorage())
}

func ListSeasons(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)

	list, err := seasons().ListSeasons(c.UserContext(), p)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Seasons.", list)
}

func GetSeason(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	seasonID := c.Locals("seasonId").(uint)

	s, err := seasons().GetSeason(c.UserContext(), p, seasonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Season details.", s)
}

// ListEpisodes returns the season's episodes for the caller together with
// the caller's progress through them.
func ListEpisodes(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	seasonID := c.Locals("seasonId").(uint)
	ctx := c.UserContext()

	if _, err := seasons().GetSeason(ctx, p, seasonID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	episodes, err := seasons().ListEpisodes(ctx, p, seasonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	statuses, summary, err := completion.NewEvaluator(database.Database.Db).Episodes(ctx, p.UserID, seasonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Episodes.", fiber.Map{
		"episodes":      episodes,
		"progress":      statuses,
		"summary":       summary,
		"exam_unlocked": summary.Unlocked() || p.IsAdmin(),
	})
}

func GetEpisode(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	episodeID := c.Locals("episodeId").(uint)
	ctx := c.UserContext()

	detail, err := seasons().GetEpisode(ctx, p, episodeID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	row, err := progress.NewStore(database.Database.Db).Get(ctx, p.UserID, episodeID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Episode details.", fiber.Map{
		"episode":     detail.Episode,
		"attachments": detail.Attachments,
		"progress":    row,
	})
}

// UpdateProgress stores the caller's playback position. Reaching 90% of the
// episode's duration marks it watched.
func UpdateProgress(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	episodeID := c.Locals("episodeId").(uint)
	reqData, ok := c.Locals("validatedProgress").(*seasonValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	ctx := c.UserContext()

	if _, err := seasons().GetEpisode(ctx, p, episodeID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	row, err := progress.NewStore(database.Database.Db).UpsertProgress(ctx, p.UserID, episodeID, *reqData.ElapsedSeconds)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved.", row)
}

func MarkWatched(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	episodeID := c.Locals("episodeId").(uint)
	ctx := c.UserContext()

	if _, err := seasons().GetEpisode(ctx, p, episodeID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	row, err := progress.NewStore(database.Database.Db).MarkWatched(ctx, p.UserID, episodeID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Episode marked as watched.", row)
}

// SeasonProgress reports how far the caller is through one season.
func SeasonProgress(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)
	seasonID := c.Locals("seasonId").(uint)
	ctx := c.UserContext()

	if _, err := seasons().GetSeason(ctx, p, seasonID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	statuses, summary, err := completion.NewEvaluator(database.Database.Db).Episodes(ctx, p.UserID, seasonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Season progress.", fiber.Map{
		"season_id":     seasonID,
		"episodes":      statuses,
		"total":         summary.Published,
		"completed":     summary.Completed,
		"percent":       summary.Percent,
		"exam_unlocked": summary.Unlocked() || p.IsAdmin(),
	})
}

// Overview summarises the caller's progress across every available season.
func Overview(c *fiber.Ctx) error {
	p, _ := middleware.CurrentPrincipal(c)

	out, err := completion.NewEvaluator(database.Database.Db).Overview(c.UserContext(), p.UserID, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress overview.", out)
}
