package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"pulseboard/internal/apperr"
	"pulseboard/internal/clicks"
	"pulseboard/internal/config"
	"pulseboard/internal/timeframe"
)

type jobClickParams struct {
	ID      string `json:"id"`
	Company string `json:"company"`
	Title   string `json:"title"`
}

// CreateJobClickHandler appends one job click row.
func CreateJobClickHandler(ctx *cartridge.Context) error {
	var params jobClickParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	click := &clicks.JobClick{
		JobID:   params.ID,
		Company: params.Company,
		Title:   params.Title,
	}

	db := ctx.DBManager.GetConnection()
	if err := clicks.RecordJobClick(db, click); err != nil {
		return writeClickError(ctx, "job", err)
	}

	return ctx.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

// GetJobClicksHandler returns the job click totals, the per-company breakdown,
// and the most recent raw clicks. Optional company and date filters.
func GetJobClicksHandler(ctx *cartridge.Context) error {
	db := ctx.DBManager.GetConnection()
	company := ctx.Query("company")

	start, end, err := parseDateRange(ctx)
	if err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	}

	total, err := clicks.CountJobClicks(db, company, start, end)
	if err != nil {
		return readClickError(ctx, "job", err)
	}

	byCompany, err := clicks.GroupedJobClicks(db, start, end)
	if err != nil {
		return readClickError(ctx, "job", err)
	}

	recent, err := clicks.RecentJobClicks(db, company, clicks.RecentLimit)
	if err != nil {
		return readClickError(ctx, "job", err)
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"totalClicks":     total,
		"clicksByCompany": byCompany,
		"recentClicks":    recent,
	})
}

type linkClickParams struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CreateLinkClickHandler appends one link click row.
func CreateLinkClickHandler(ctx *cartridge.Context) error {
	var params linkClickParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	click := &clicks.LinkClick{
		LinkID: params.ID,
		Label:  params.Label,
	}

	db := ctx.DBManager.GetConnection()
	if err := clicks.RecordLinkClick(db, click); err != nil {
		return writeClickError(ctx, "link", err)
	}

	return ctx.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

// GetLinkClicksHandler returns link click totals, the per-link breakdown, and
// the most recent raw clicks. Optional linkId and date filters.
func GetLinkClicksHandler(ctx *cartridge.Context) error {
	db := ctx.DBManager.GetConnection()
	linkID := ctx.Query("linkId")

	start, end, err := parseDateRange(ctx)
	if err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	}

	total, err := clicks.CountLinkClicks(db, linkID, start, end)
	if err != nil {
		return readClickError(ctx, "link", err)
	}

	byLink, err := clicks.GroupedLinkClicks(db, start, end)
	if err != nil {
		return readClickError(ctx, "link", err)
	}

	recent, err := clicks.RecentLinkClicks(db, linkID, clicks.RecentLimit)
	if err != nil {
		return readClickError(ctx, "link", err)
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"totalClicks":  total,
		"clicksByLink": byLink,
		"recentClicks": recent,
	})
}

// parseDateRange parses optional startDate/endDate query params (YYYY-MM-DD)
// into a half-open window of whole days in the reference timezone. A missing
// bound stays unbounded (zero time).
func parseDateRange(ctx *cartridge.Context) (time.Time, time.Time, error) {
	cfg := ctx.Config.(*config.Config)
	loc := cfg.GetReferenceLocation()

	var start, end time.Time

	if raw := ctx.Query("startDate"); raw != "" {
		parsed, err := time.ParseInLocation(timeframe.DateKeyFormat, raw, loc)
		if err != nil {
			return start, end, apperr.NewValidationError("startDate", "must be formatted YYYY-MM-DD")
		}
		start = parsed.UTC()
	}

	if raw := ctx.Query("endDate"); raw != "" {
		parsed, err := time.ParseInLocation(timeframe.DateKeyFormat, raw, loc)
		if err != nil {
			return start, end, apperr.NewValidationError("endDate", "must be formatted YYYY-MM-DD")
		}
		// endDate is inclusive on the wire; extend to the next day start
		end = parsed.AddDate(0, 0, 1).UTC()
	}

	return start, end, nil
}

func writeClickError(ctx *cartridge.Context, kind string, err error) error {
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
			"code":  "VALIDATION_ERROR",
		})
	}

	ctx.Logger.Error("Failed to record click",
		slog.String("kind", kind),
		slog.Any("error", err))
	return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to record click",
		"code":  "CLICK_WRITE_ERROR",
	})
}

func readClickError(ctx *cartridge.Context, kind string, err error) error {
	ctx.Logger.Error("Failed to load clicks",
		slog.String("kind", kind),
		slog.Any("error", err))
	return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to load clicks",
		"code":  "CLICK_READ_ERROR",
	})
}
