package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"pulseboard/internal/apperr"
	"pulseboard/internal/config"
	"pulseboard/internal/presence"
)

type heartbeatParams struct {
	VisitorID string `json:"visitorId"`
	Page      string `json:"page"`
}

// HeartbeatHandler upserts a presence record for the calling visitor.
// Store failures are fire-and-forget: they are logged server-side and the
// client still gets an accepted response so navigation is never blocked.
func HeartbeatHandler(ctx *cartridge.Context) error {
	var params heartbeatParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	input := &presence.HeartbeatInput{
		VisitorID: params.VisitorID,
		Page:      params.Page,
		Country:   resolveCountry(ctx.Ctx),
	}

	db := ctx.DBManager.GetConnection()
	if err := presence.RecordHeartbeat(db, ctx.Logger, input); err != nil {
		var validationErr *apperr.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Error(),
				"code":  "VALIDATION_ERROR",
			})
		}

		ctx.Logger.Error("Failed to record heartbeat",
			slog.String("visitor_id", params.VisitorID),
			slog.String("page", params.Page),
			slog.Any("error", err))
		return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
			"success": false,
		})
	}

	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"success": true,
	})
}

type presenceRemoveParams struct {
	VisitorID string `json:"visitorId"`
	Page      string `json:"page"`
}

// RemovePresenceHandler removes the visitor's presence rows, typically fired
// on pagehide. Best effort: the response never reports a store failure.
func RemovePresenceHandler(ctx *cartridge.Context) error {
	var params presenceRemoveParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	if params.VisitorID == "" {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "visitorId is required",
			"code":  "VALIDATION_ERROR",
		})
	}

	db := ctx.DBManager.GetConnection()
	if err := presence.Remove(db, ctx.Logger, params.VisitorID, params.Page); err != nil {
		ctx.Logger.Error("Failed to remove presence",
			slog.String("visitor_id", params.VisitorID),
			slog.Any("error", err))
	}

	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"success": true,
	})
}

// GetPresenceHandler returns live page counts. Stale records are swept before
// counting, so the response only reflects visitors inside the liveness window.
func GetPresenceHandler(ctx *cartridge.Context) error {
	cfg := ctx.Config.(*config.Config)
	db := ctx.DBManager.GetConnection()

	snapshot, err := presence.LiveCounts(db, ctx.Logger, time.Now().UTC(), cfg.GetLivenessWindow())
	if err != nil {
		ctx.Logger.Error("Failed to load live presence counts", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load presence",
			"code":  "PRESENCE_LOAD_ERROR",
		})
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"presence": snapshot.Pages,
		"total":    snapshot.Total,
	})
}
