package v1

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pulseboard/internal/activity"
	"pulseboard/internal/apperr"
	"pulseboard/internal/config"
	"pulseboard/internal/pkg/async"
	"pulseboard/internal/pkg/geoip"
	"pulseboard/internal/presence"
	"pulseboard/internal/timeframe"
)

// presencePages are the fixed page buckets exposed on the activity feed.
var presencePages = []string{"home", "jobs", "resources", "community", "blog", "links"}

const activityQueryTimeout = 10 * time.Second

type createActivityParams struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	// Metadata is an opaque JSON value, passed through without inspection.
	Metadata json.RawMessage `json:"metadata"`
}

// CreateActivityHandler appends one event to the activity feed.
func CreateActivityHandler(ctx *cartridge.Context) error {
	var params createActivityParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	event := &activity.Event{
		Type:     activity.EventType(params.Type),
		Message:  params.Message,
		Metadata: params.Metadata,
	}

	db := ctx.DBManager.GetConnection()
	if err := activity.CreateEvent(db, event); err != nil {
		var validationErr *apperr.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Error(),
				"code":  "VALIDATION_ERROR",
			})
		}

		ctx.Logger.Error("Failed to create activity event",
			slog.String("type", params.Type),
			slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create activity",
			"code":  "ACTIVITY_CREATE_ERROR",
		})
	}

	return ctx.Status(http.StatusCreated).JSON(fiber.Map{
		"id":        event.ID,
		"type":      event.Type,
		"message":   event.Message,
		"createdAt": event.CreatedAt,
	})
}

// GetActivityHandler returns the combined community snapshot: recent feed
// entries, live presence buckets, visitor locations, and today's counters.
// The independent queries are fanned out over a worker pool.
func GetActivityHandler(ctx *cartridge.Context) error {
	cfg := ctx.Config.(*config.Config)
	db := ctx.DBManager.GetConnection()
	logger := ctx.Logger

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a non-negative integer",
				"code":  "VALIDATION_ERROR",
			})
		}
		limit = parsed
	}

	now := time.Now().UTC()
	loc := cfg.GetReferenceLocation()
	dayStart, dayEnd := timeframe.DayRange(now, 0, loc)

	queryCtx, cancel := context.WithTimeout(context.Background(), activityQueryTimeout)
	defer cancel()

	tasks := []async.Task{
		{
			Name: "activities",
			Execute: func() (interface{}, error) {
				return activity.RecentEvents(db, limit)
			},
		},
		{
			Name: "presence",
			Execute: func() (interface{}, error) {
				return presence.LiveCounts(db, logger, now, cfg.GetLivenessWindow())
			},
		},
		{
			Name: "stats",
			Execute: func() (interface{}, error) {
				return activity.StatsInRange(db, dayStart, dayEnd)
			},
		},
	}

	pool := async.NewPool(len(tasks))
	results := pool.Execute(queryCtx, tasks)

	for _, name := range []string{"activities", "presence", "stats"} {
		result, ok := results[name]
		if !ok {
			logger.Error("Activity query timed out", slog.String("query", name))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load activity",
				"code":  "ACTIVITY_LOAD_ERROR",
			})
		}
		if result.Err != nil {
			logger.Error("Activity query failed",
				slog.String("query", name),
				slog.Any("error", result.Err))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load activity",
				"code":  "ACTIVITY_LOAD_ERROR",
			})
		}
	}

	events := results["activities"].Data.([]activity.Event)
	snapshot := results["presence"].Data.(*presence.Snapshot)
	stats := results["stats"].Data.(*activity.TodayStats)

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"activities": events,
		"presence":   presenceBuckets(snapshot),
		"locations":  countryNameCounts(snapshot.Countries),
		"stats":      stats,
	})
}

// presenceBuckets projects a snapshot onto the fixed page buckets. Pages
// outside the known set still count toward total.
func presenceBuckets(snapshot *presence.Snapshot) fiber.Map {
	buckets := fiber.Map{}
	for _, page := range presencePages {
		buckets[page] = snapshot.Pages[page]
	}
	buckets["total"] = snapshot.Total
	return buckets
}

// countryNameCounts maps lowercase ISO codes to display country names.
func countryNameCounts(counts map[string]int) map[string]int {
	caser := cases.Upper(language.AmericanEnglish)
	countries := gountries.New()

	named := make(map[string]int, len(counts))
	for code, count := range counts {
		name := "Unknown"
		if code != "" && code != geoip.UnknownCountry {
			country, err := countries.FindCountryByAlpha(code)
			if err != nil {
				name = caser.String(code)
			} else {
				name = country.Name.Common
			}
		}
		named[name] += count
	}
	return named
}
