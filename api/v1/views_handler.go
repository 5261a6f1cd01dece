package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"pulseboard/internal/apperr"
	"pulseboard/internal/views"
)

type blogViewParams struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// CreateBlogViewHandler appends one blog view row.
func CreateBlogViewHandler(ctx *cartridge.Context) error {
	var params blogViewParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	view := &views.BlogView{
		Slug:  params.Slug,
		Title: params.Title,
	}

	db := ctx.DBManager.GetConnection()
	if err := views.RecordView(db, view); err != nil {
		var validationErr *apperr.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Error(),
				"code":  "VALIDATION_ERROR",
			})
		}

		ctx.Logger.Error("Failed to record blog view",
			slog.String("slug", params.Slug),
			slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record view",
			"code":  "VIEW_WRITE_ERROR",
		})
	}

	return ctx.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

// GetBlogViewsHandler returns view totals per slug plus the most recent raw
// views. Optional slug and date filters.
func GetBlogViewsHandler(ctx *cartridge.Context) error {
	db := ctx.DBManager.GetConnection()
	slug := ctx.Query("slug")

	start, end, err := parseDateRange(ctx)
	if err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	}

	total, err := views.CountInRange(db, slug, start, end)
	if err != nil {
		return readViewError(ctx, err)
	}

	bySlug, err := views.GroupedBySlug(db, start, end)
	if err != nil {
		return readViewError(ctx, err)
	}

	recent, err := views.RecentViews(db, slug, views.RecentLimit)
	if err != nil {
		return readViewError(ctx, err)
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"totalViews":  total,
		"viewsBySlug": bySlug,
		"recentViews": recent,
	})
}

func readViewError(ctx *cartridge.Context, err error) error {
	ctx.Logger.Error("Failed to load blog views", slog.Any("error", err))
	return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to load views",
		"code":  "VIEW_READ_ERROR",
	})
}
