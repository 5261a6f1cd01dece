package seeder

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/karloscodes/cartridge"

	"pulseboard/internal/activity"
	"pulseboard/internal/clicks"
	"pulseboard/internal/presence"
	"pulseboard/internal/rollup"
	"pulseboard/internal/views"
)

// Seeder fills the store with plausible demo data: a spread of raw click and
// view rows over past days, a handful of live presence records, recent feed
// entries, and the matching daily rollup rows.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	Days      int
	Location  *time.Location
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, days int, loc *time.Location) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	if days <= 0 {
		days = 14
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		Days:      days,
		Location:  loc,
	}
}

var seedPages = []string{"home", "jobs", "resources", "community", "links", "blog/intro-to-sre", "blog/negotiating-offers"}

var seedCountries = []string{"us", "gb", "ng", "ke", "ca", "de"}

var seedSlugs = []struct {
	slug  string
	title string
}{
	{"intro-to-sre", "An Intro to Site Reliability Engineering"},
	{"negotiating-offers", "Negotiating Your First Offer"},
	{"cloud-certs-2026", "Which Cloud Certs Matter in 2026"},
}

var seedJobs = []struct {
	id      string
	company string
	title   string
}{
	{"job-001", "Stripe", "Backend Engineer"},
	{"job-002", "Cloudflare", "Systems Engineer"},
	{"job-003", "Datadog", "SRE II"},
}

var seedLinks = []struct {
	id    string
	label string
}{
	{"link-discord", "Community Discord"},
	{"link-newsletter", "Monthly Newsletter"},
	{"link-mentorship", "Mentorship Signup"},
}

var seedMessages = []struct {
	eventType activity.EventType
	message   string
}{
	{activity.EventMicroWin, "Shipped my first Terraform module at work!"},
	{activity.EventMicroWin, "Passed the AWS SAA exam this morning"},
	{activity.EventLessonComplete, "Finished the Kubernetes networking lesson"},
	{activity.EventLessonComplete, "Completed the systems design interview track"},
	{activity.EventMicroWin, "Got a recruiter callback after three months of applying"},
}

// Run seeds demo data and backfills the daily rollup rows.
func (s *Seeder) Run() error {
	start := time.Now()
	s.Logger.Info("Seeding demo data...", slog.Int("days", s.Days))

	db := s.DBManager.GetConnection()
	now := time.Now().UTC()

	// Raw events spread over past days
	for daysAgo := 1; daysAgo <= s.Days; daysAgo++ {
		dayAnchor := now.AddDate(0, 0, -daysAgo)

		for i := 0; i < 3+rand.IntN(10); i++ {
			pick := seedSlugs[rand.IntN(len(seedSlugs))]
			view := views.BlogView{
				Slug:     pick.slug,
				Title:    pick.title,
				ViewedAt: randomMomentIn(dayAnchor),
			}
			if err := db.Create(&view).Error; err != nil {
				return fmt.Errorf("failed to seed blog view: %w", err)
			}
		}

		for i := 0; i < rand.IntN(6); i++ {
			pick := seedJobs[rand.IntN(len(seedJobs))]
			click := clicks.JobClick{
				JobID:     pick.id,
				Company:   pick.company,
				Title:     pick.title,
				ClickedAt: randomMomentIn(dayAnchor),
			}
			if err := db.Create(&click).Error; err != nil {
				return fmt.Errorf("failed to seed job click: %w", err)
			}
		}

		for i := 0; i < rand.IntN(8); i++ {
			pick := seedLinks[rand.IntN(len(seedLinks))]
			click := clicks.LinkClick{
				LinkID:    pick.id,
				Label:     pick.label,
				ClickedAt: randomMomentIn(dayAnchor),
			}
			if err := db.Create(&click).Error; err != nil {
				return fmt.Errorf("failed to seed link click: %w", err)
			}
		}
	}

	// Live presence inside the current window
	for i := 0; i < 8; i++ {
		record := presence.Record{
			VisitorID:  fmt.Sprintf("seed-visitor-%02d", i),
			Page:       seedPages[rand.IntN(len(seedPages))],
			Country:    seedCountries[rand.IntN(len(seedCountries))],
			LastSeenAt: now.Add(-time.Duration(rand.IntN(120)) * time.Second),
			CreatedAt:  now,
		}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to seed presence: %w", err)
		}
	}

	// Recent feed entries
	for i, pick := range seedMessages {
		event := activity.Event{
			Type:      pick.eventType,
			Message:   pick.message,
			CreatedAt: now.Add(-time.Duration(i*37) * time.Minute),
		}
		if err := db.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to seed activity event: %w", err)
		}
	}

	// Rollup rows for the seeded days
	created, err := rollup.Backfill(db, s.Logger, now, s.Days, s.Location)
	if err != nil {
		return fmt.Errorf("failed to backfill rollups: %w", err)
	}

	s.Logger.Info("Seeding completed",
		slog.Int("rollup_rows", created),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// randomMomentIn shifts an anchor to a random daytime hour, returned in UTC
// to match how event timestamps are stored.
func randomMomentIn(anchor time.Time) time.Time {
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(),
		8+rand.IntN(14), rand.IntN(60), rand.IntN(60), 0, anchor.Location()).UTC()
}
