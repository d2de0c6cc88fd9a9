package assistant

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/store"
)

// Profile is the combined structured record for one person's performance
// view. Fields left zero when the underlying lookup found nothing.
type Profile struct {
	UserID      string
	DisplayName string
	AvatarURL   string

	WeeklyMetrics  *store.PerformanceMetrics
	MonthlyMetrics *store.PerformanceMetrics
	Achievements   []store.Achievement
	Alerts         []store.Alert

	Streak   int
	WorkDays int // last 7 days
	OffDays  int // last 7 days
}

// streakCap bounds the backward walk as a safety net against unbounded
// history scans.
const streakCap = 100

// BuildProfile fetches one person's profile facts concurrently. There is no
// ordering requirement among a single person's own facts, so the six
// sub-queries fan out and join. Individual failures are logged and leave
// their field empty; the profile itself is always returned.
func (a *Aggregator) BuildProfile(ctx context.Context, userID string) *Profile {
	p := &Profile{UserID: userID}

	profile, err := a.names.Lookup(ctx, userID)
	if err != nil {
		profile = names.Profile{DisplayName: userID}
	}
	p.DisplayName = profile.DisplayName
	if p.DisplayName == "" {
		p.DisplayName = userID
	}
	p.AvatarURL = profile.AvatarURL

	today := a.resolver.Today()

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				slog.Warn("profile lookup failed", "part", name, "user", userID, "error", err)
			}
		}()
	}

	run("weekly metrics", func() error {
		m, ok, err := a.store.LatestMetrics(userID, "week")
		if err != nil {
			return err
		}
		if ok {
			p.WeeklyMetrics = m
		}
		return nil
	})
	run("monthly metrics", func() error {
		m, ok, err := a.store.LatestMetrics(userID, "month")
		if err != nil {
			return err
		}
		if ok {
			p.MonthlyMetrics = m
		}
		return nil
	})
	run("achievements", func() error {
		achievements, err := a.store.ActiveAchievements(userID, 5)
		if err != nil {
			return err
		}
		p.Achievements = achievements
		return nil
	})
	run("alerts", func() error {
		alerts, err := a.store.RecentAlerts(userID, 7, 3)
		if err != nil {
			return err
		}
		p.Alerts = alerts
		return nil
	})
	run("streak", func() error {
		streak, err := a.Streak(userID, today)
		if err != nil {
			return err
		}
		p.Streak = streak
		return nil
	})
	run("recent days", func() error {
		entries, err := a.store.EntriesBetween(userID, mustAddDays(today, -6), today)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDayOff {
				p.OffDays++
			} else {
				p.WorkDays++
			}
		}
		return nil
	})

	wg.Wait()
	return p
}

// Streak counts consecutive days ending today with a non-day-off entry.
// The walk stops at the first date without a qualifying entry and is
// capped at streakCap days.
func (a *Aggregator) Streak(userID, today string) (int, error) {
	streak := 0
	for day := 0; day < streakCap; day++ {
		date := mustAddDays(today, -day)
		entry, found, err := a.store.Entry(userID, date)
		if err != nil {
			return 0, err
		}
		if !found || entry.IsDayOff {
			break
		}
		streak++
	}
	return streak, nil
}
