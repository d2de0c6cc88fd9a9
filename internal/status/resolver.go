// Package status computes a person's availability for a date from their
// stored standup entries. Resolution is a pure function of (entries, clock);
// it mutates nothing and is safe to call concurrently for many people.
package status

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teampulse/teampulse/internal/store"
)

// State classifies the resolved availability.
type State int

const (
	StateUnknown State = iota
	StateScheduledOff
	StateNotYetDue
	StateCurrentlyOut
	StateOutLater
	StateBackToday
	StateWorking
	StateNotSubmitted
	StatePastOff
	StatePastWorked
	StatePastMissing
)

// Availability is the resolver's structured result. The lines are ready for
// both plain-text context and block replies.
type Availability struct {
	UserID       string
	DisplayName  string
	Date         string
	State        State
	StatusEmoji  string
	StatusLine   string
	UpcomingLine string
}

// Text joins the status and upcoming lines for the context-string path.
func (a *Availability) Text() string {
	if a.UpcomingLine == "" {
		return a.StatusLine
	}
	return a.StatusLine + " " + a.UpcomingLine
}

// EntryStore is the slice of the document store the resolver reads.
type EntryStore interface {
	Entry(userID, date string) (*store.StandupEntry, bool, error)
	LatestEntryBefore(userID, date string) (*store.StandupEntry, bool, error)
	NextDayOffAfter(userID, date string) (*store.StandupEntry, bool, error)
}

// Resolver resolves availability in a fixed reference time zone.
type Resolver struct {
	entries EntryStore
	loc     *time.Location
	now     func() time.Time
}

// New creates a Resolver. loc is the reference zone for the past/today/
// future partition.
func New(entries EntryStore, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{entries: entries, loc: loc, now: time.Now}
}

// WithClock overrides the clock; tests pin "now" with it.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Today returns the current date string in the reference zone.
func (r *Resolver) Today() string {
	return r.now().In(r.loc).Format(store.DateFormat)
}

// Resolve computes availability for userID on targetDate (empty means
// today). Exactly one of the past/today/future branches runs per call.
func (r *Resolver) Resolve(userID, displayName, targetDate string) (*Availability, error) {
	now := r.now().In(r.loc)
	today := now.Format(store.DateFormat)
	if targetDate == "" {
		targetDate = today
	}

	a := &Availability{UserID: userID, DisplayName: displayName, Date: targetDate}

	entry, found, err := r.entries.Entry(userID, targetDate)
	if err != nil {
		return nil, fmt.Errorf("resolve status for %s: %w", userID, err)
	}

	switch {
	case targetDate > today:
		r.resolveFuture(a, entry, found)
	case targetDate == today:
		if err := r.resolveToday(a, entry, found, now); err != nil {
			return nil, err
		}
	default:
		r.resolvePast(a, entry, found)
	}

	// Every branch also reports the nearest future day off, if any.
	upcoming, ok, err := r.entries.NextDayOffAfter(userID, today)
	if err != nil {
		return nil, fmt.Errorf("upcoming day off for %s: %w", userID, err)
	}
	if ok {
		a.UpcomingLine = r.describeUpcoming(upcoming, now)
	}
	return a, nil
}

func (r *Resolver) resolveFuture(a *Availability, entry *store.StandupEntry, found bool) {
	label := r.humanizeDate(a.Date, r.now().In(r.loc))
	if found && entry.IsDayOff {
		a.State = StateScheduledOff
		a.StatusEmoji = "📅"
		a.StatusLine = fmt.Sprintf("%s has scheduled time off %s (%s)%s.",
			a.DisplayName, onLabel(label), DescribeDayOffRange(entry.DayOffStart, entry.DayOffEnd),
			reasonSuffix(entry.DayOffReason))
		return
	}
	a.State = StateNotYetDue
	a.StatusEmoji = "⚪"
	a.StatusLine = fmt.Sprintf("%s has no time off scheduled %s; that standup isn't due yet.",
		a.DisplayName, onLabel(label))
}

func (r *Resolver) resolveToday(a *Availability, entry *store.StandupEntry, found bool, now time.Time) error {
	if found && entry.IsDayOff {
		startMin := clockMinutes(entry.DayOffStart, 0)
		endMin := clockMinutes(entry.DayOffEnd, 23*60+59)
		nowMin := now.Hour()*60 + now.Minute()
		window := DescribeDayOffRange(entry.DayOffStart, entry.DayOffEnd)
		switch {
		case nowMin >= startMin && nowMin < endMin:
			a.State = StateCurrentlyOut
			a.StatusEmoji = "🔴"
			a.StatusLine = fmt.Sprintf("%s is currently out (%s)%s.",
				a.DisplayName, window, reasonSuffix(entry.DayOffReason))
		case nowMin < startMin:
			a.State = StateOutLater
			a.StatusEmoji = "🟠"
			a.StatusLine = fmt.Sprintf("%s will be out later today (%s)%s.",
				a.DisplayName, window, reasonSuffix(entry.DayOffReason))
		default:
			a.State = StateBackToday
			a.StatusEmoji = "🟢"
			a.StatusLine = fmt.Sprintf("%s was out earlier today (%s)%s and is back now.",
				a.DisplayName, window, reasonSuffix(entry.DayOffReason))
		}
		return nil
	}
	if found {
		a.State = StateWorking
		a.StatusEmoji = "🟢"
		a.StatusLine = fmt.Sprintf("%s submitted today's standup and is working.", a.DisplayName)
		return nil
	}

	a.State = StateNotSubmitted
	a.StatusEmoji = "⚪"
	a.StatusLine = fmt.Sprintf("%s hasn't submitted a standup yet today.", a.DisplayName)
	prev, ok, err := r.entries.LatestEntryBefore(a.UserID, a.Date)
	if err != nil {
		return fmt.Errorf("last seen for %s: %w", a.UserID, err)
	}
	if ok {
		if d, err := time.ParseInLocation(store.DateFormat, prev.Date, r.loc); err == nil {
			a.StatusLine += fmt.Sprintf(" Last update was %s.", d.Format("Monday, January 2"))
		}
	} else {
		a.StatusLine += " No historical data."
	}
	return nil
}

func (r *Resolver) resolvePast(a *Availability, entry *store.StandupEntry, found bool) {
	switch {
	case found && entry.IsDayOff:
		a.State = StatePastOff
		a.StatusEmoji = "🏖️"
		a.StatusLine = fmt.Sprintf("%s was off on %s (%s)%s.",
			a.DisplayName, a.Date, DescribeDayOffRange(entry.DayOffStart, entry.DayOffEnd),
			reasonSuffix(entry.DayOffReason))
	case found:
		a.State = StatePastWorked
		a.StatusEmoji = "✅"
		a.StatusLine = fmt.Sprintf("%s worked on %s (standup submitted).", a.DisplayName, a.Date)
	default:
		a.State = StatePastMissing
		a.StatusEmoji = "⚪"
		a.StatusLine = fmt.Sprintf("%s didn't submit a standup on %s.", a.DisplayName, a.Date)
	}
}

func (r *Resolver) describeUpcoming(entry *store.StandupEntry, now time.Time) string {
	label := r.humanizeDate(entry.Date, now)
	// The window is the time the person is off: off until mid-day is a
	// late start, off from mid-day on is an early leave.
	partial := ""
	startSet := !isDefaultStart(entry.DayOffStart)
	endSet := !isDefaultEnd(entry.DayOffEnd)
	if endSet && !startSet {
		partial = " (late start)"
	} else if startSet && !endSet {
		partial = " (leaving early)"
	}
	return fmt.Sprintf("Upcoming: off %s, %s%s%s.",
		label, DescribeDayOffRange(entry.DayOffStart, entry.DayOffEnd), partial,
		reasonSuffix(entry.DayOffReason))
}

// humanizeDate renders a date relative to now: "tomorrow", a weekday name
// within the next 7 days, otherwise the full date.
func (r *Resolver) humanizeDate(date string, now time.Time) string {
	d, err := time.ParseInLocation(store.DateFormat, date, r.loc)
	if err != nil {
		return date
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	days := int(d.Sub(today).Hours() / 24)
	switch {
	case days == 1:
		return "tomorrow"
	case days > 1 && days <= 7:
		return d.Format("Monday")
	default:
		return d.Format("Monday, January 2")
	}
}

// DescribeDayOffRange renders a day-off time window. The default window
// (00:00–23:59) reads "all day".
func DescribeDayOffRange(start, end string) string {
	if isDefaultStart(start) && isDefaultEnd(end) {
		return "all day"
	}
	if start == "" {
		start = "00:00"
	}
	if end == "" {
		end = "23:59"
	}
	return start + "–" + end
}

func isDefaultStart(start string) bool { return start == "" || start == "00:00" }
func isDefaultEnd(end string) bool     { return end == "" || end == "23:59" }

// clockMinutes parses "HH:MM" into minute-of-day, returning fallback on any
// malformed value.
func clockMinutes(clock string, fallback int) int {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return fallback
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return fallback
	}
	return h*60 + m
}

func onLabel(label string) string {
	if label == "tomorrow" {
		return label
	}
	return "on " + label
}

func reasonSuffix(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return ""
	}
	return ": " + reason
}
