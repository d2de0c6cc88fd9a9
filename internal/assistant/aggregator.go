// Package assistant wires the intent router, status resolver, context
// aggregator, and response synthesizer into the mention-handling engine.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/teampulse/teampulse/internal/intent"
	"github.com/teampulse/teampulse/internal/linear"
	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/status"
	"github.com/teampulse/teampulse/internal/store"
)

// DataStore is the slice of the document store the aggregator reads.
type DataStore interface {
	Entry(userID, date string) (*store.StandupEntry, bool, error)
	LatestEntryBefore(userID, date string) (*store.StandupEntry, bool, error)
	NextDayOffAfter(userID, date string) (*store.StandupEntry, bool, error)
	EntriesBetween(userID, from, to string) ([]store.StandupEntry, error)
	EntriesOn(date string) ([]store.StandupEntry, error)
	ThreadForDate(date string) (*store.StandupThread, bool, error)
	LatestMetrics(userID, periodKind string) (*store.PerformanceMetrics, bool, error)
	ActiveAchievements(userID string, limit int) ([]store.Achievement, error)
	RecentAlerts(userID string, days, limit int) ([]store.Alert, error)
}

// Tracker is the issue-tracker contract. A nil Tracker means the
// integration is not configured; every tracker-backed enrichment then
// contributes nothing.
type Tracker interface {
	UserByEmail(ctx context.Context, email string) (*linear.User, bool, error)
	ActiveIssues(ctx context.Context, assigneeID string, limit int) ([]linear.Issue, error)
	IssueByIdentifier(ctx context.Context, identifier string) (*linear.Issue, bool, error)
}

// Result is the aggregator's output: ordered grounding context plus the
// structured records that feed block-formatted replies.
type Result struct {
	Context  []string
	Statuses []*status.Availability
	Profiles []*Profile
}

// gatherKind identifies one per-person fact gatherer.
type gatherKind int

const (
	gatherAvailability gatherKind = iota
	gatherWorkSummary
)

// gatherOrder fixes the within-person ordering of context contributions.
var gatherOrder = []gatherKind{gatherAvailability, gatherWorkSummary}

type gatherFunc func(ctx context.Context, userID string, res *Result) error

// Aggregator fans out to the document store and issue tracker per intent
// and per mentioned person. Per-person work is sequential so the context
// list order matches mention order.
type Aggregator struct {
	store     DataStore
	resolver  *status.Resolver
	names     *names.Cache
	tracker   Tracker
	gatherers map[gatherKind]gatherFunc
}

// NewAggregator creates an Aggregator. tracker may be nil.
func NewAggregator(ds DataStore, resolver *status.Resolver, nameCache *names.Cache, tracker Tracker) *Aggregator {
	a := &Aggregator{
		store:    ds,
		resolver: resolver,
		names:    nameCache,
		tracker:  tracker,
	}
	// Adding an intent means adding one table entry here, not branching
	// logic at the call sites.
	a.gatherers = map[gatherKind]gatherFunc{
		gatherAvailability: a.gatherAvailability,
		gatherWorkSummary:  a.gatherWorkSummary,
	}
	return a
}

// Gather runs every requested gatherer for q and assembles the result.
func (a *Aggregator) Gather(ctx context.Context, q intent.Query) (*Result, error) {
	res := &Result{}

	// Performance and full-profile queries take the structured profile
	// path and bypass the context-string list entirely.
	if q.Intents.Performance || q.Intents.FullProfile {
		for _, userID := range q.Mentions {
			res.Profiles = append(res.Profiles, a.BuildProfile(ctx, userID))
		}
		return res, nil
	}

	requested := a.requestedKinds(q.Intents)
	for _, userID := range q.Mentions {
		for _, kind := range requested {
			if err := a.gatherers[kind](ctx, userID, res); err != nil {
				return nil, err
			}
		}
	}

	if q.Intents.TicketStatus {
		a.gatherTickets(ctx, q.Tickets, res)
	}

	if len(res.Context) == 0 {
		if err := a.generalSearch(ctx, q, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (a *Aggregator) requestedKinds(i intent.Intents) []gatherKind {
	var kinds []gatherKind
	for _, kind := range gatherOrder {
		switch kind {
		case gatherAvailability:
			if i.Availability {
				kinds = append(kinds, kind)
			}
		case gatherWorkSummary:
			if i.WorkSummary {
				kinds = append(kinds, kind)
			}
		}
	}
	return kinds
}

func (a *Aggregator) gatherAvailability(ctx context.Context, userID string, res *Result) error {
	avail, err := a.resolver.Resolve(userID, a.names.DisplayName(ctx, userID), "")
	if err != nil {
		return err
	}
	res.Context = append(res.Context, avail.Text())
	res.Statuses = append(res.Statuses, avail)
	return nil
}

// gatherWorkSummary contributes today's standup sections plus, when every
// precondition holds, the person's recent tracker issues. Missing
// preconditions are expected absences and contribute nothing.
func (a *Aggregator) gatherWorkSummary(ctx context.Context, userID string, res *Result) error {
	displayName := a.names.DisplayName(ctx, userID)
	entry, found, err := a.store.Entry(userID, a.resolver.Today())
	if err != nil {
		return err
	}
	if found && !entry.IsDayOff {
		var lines []string
		if strings.TrimSpace(entry.Today) != "" {
			lines = append(lines, "Today's work: "+entry.Today)
		}
		if strings.TrimSpace(entry.Yesterday) != "" {
			lines = append(lines, "Yesterday completed: "+entry.Yesterday)
		}
		if strings.TrimSpace(entry.Blockers) != "" {
			lines = append(lines, "Blockers: "+entry.Blockers)
		}
		if strings.TrimSpace(entry.Notes) != "" {
			lines = append(lines, "Notes: "+entry.Notes)
		}
		if len(lines) > 0 {
			res.Context = append(res.Context, displayName+"'s standup:\n"+strings.Join(lines, "\n"))
		}
	}

	if summary := a.trackerIssueSummary(ctx, userID, displayName); summary != "" {
		res.Context = append(res.Context, summary)
	}
	return nil
}

// trackerIssueSummary returns a grouped issue summary, or empty when any
// precondition (integration, email, account) is missing or the tracker
// call fails. These paths never produce a user-visible error.
func (a *Aggregator) trackerIssueSummary(ctx context.Context, userID, displayName string) string {
	if a.tracker == nil {
		return ""
	}
	email := a.names.Email(ctx, userID)
	if email == "" {
		return ""
	}
	account, ok, err := a.tracker.UserByEmail(ctx, email)
	if err != nil {
		slog.Warn("tracker user lookup failed", "user", userID, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	issues, err := a.tracker.ActiveIssues(ctx, account.ID, 5)
	if err != nil {
		slog.Warn("tracker issue fetch failed", "user", userID, "error", err)
		return ""
	}
	if len(issues) == 0 {
		return ""
	}
	return displayName + "'s recent Linear issues:\n" + FormatIssuesByState(issues)
}

// stateOrder is the fixed workflow-state priority for grouped issue
// summaries; unrecognized states sort last, alphabetically.
var stateOrder = map[string]int{
	"Backlog":     0,
	"Todo":        1,
	"In Progress": 2,
	"In Review":   3,
	"In Testing":  4,
	"Done":        5,
	"Canceled":    6,
}

// FormatIssuesByState renders issues grouped by workflow state in priority
// order, one bullet per issue.
func FormatIssuesByState(issues []linear.Issue) string {
	grouped := make(map[string][]linear.Issue)
	for _, issue := range issues {
		grouped[issue.State] = append(grouped[issue.State], issue)
	}

	states := make([]string, 0, len(grouped))
	for state := range grouped {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		oi, iKnown := stateOrder[states[i]]
		oj, jKnown := stateOrder[states[j]]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return states[i] < states[j]
		}
	})

	var b strings.Builder
	for _, state := range states {
		fmt.Fprintf(&b, "%s:\n", state)
		for _, issue := range grouped[state] {
			if issue.PriorityLabel != "" && issue.PriorityLabel != "No priority" {
				fmt.Fprintf(&b, "• %s %s [%s]\n", issue.Identifier, issue.Title, issue.PriorityLabel)
			} else {
				fmt.Fprintf(&b, "• %s %s\n", issue.Identifier, issue.Title)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// gatherTickets looks up each matched identifier independently; one failed
// lookup never aborts the others.
func (a *Aggregator) gatherTickets(ctx context.Context, tickets []string, res *Result) {
	if a.tracker == nil {
		res.Context = append(res.Context, "Linear integration is not configured yet.")
		return
	}
	for _, id := range tickets {
		issue, ok, err := a.tracker.IssueByIdentifier(ctx, id)
		if err != nil {
			slog.Error("ticket lookup failed", "ticket", id, "error", err)
			res.Context = append(res.Context, fmt.Sprintf("Couldn't look up %s: %v", id, err))
			continue
		}
		if !ok {
			res.Context = append(res.Context, fmt.Sprintf("No issue found with identifier %s.", id))
			continue
		}
		line := fmt.Sprintf("%s %s — state: %s", issue.Identifier, issue.Title, issue.State)
		if issue.PriorityLabel != "" && issue.PriorityLabel != "No priority" {
			line += ", priority: " + issue.PriorityLabel
		}
		res.Context = append(res.Context, line)
	}
}

// generalSearch is the fallback when no gatherer contributed anything:
// recent history per mentioned person, or a team-wide today summary.
func (a *Aggregator) generalSearch(ctx context.Context, q intent.Query, res *Result) error {
	today := a.resolver.Today()

	if len(q.Mentions) > 0 {
		from := mustAddDays(today, -14)
		for _, userID := range q.Mentions {
			entries, err := a.store.EntriesBetween(userID, from, today)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				continue
			}
			displayName := a.names.DisplayName(ctx, userID)
			var lines []string
			for _, e := range entries {
				lines = append(lines, summarizeEntryLine(&e))
			}
			res.Context = append(res.Context,
				fmt.Sprintf("%s's last %d submissions:\n%s", displayName, len(entries), strings.Join(lines, "\n")))
		}
		return nil
	}

	if !q.TeamWide {
		return nil
	}
	entries, err := a.store.EntriesOn(today)
	if err != nil {
		return err
	}
	for _, e := range entries {
		displayName := a.names.DisplayName(ctx, e.UserID)
		if e.IsDayOff {
			reason := e.DayOffReason
			if reason == "" {
				reason = "no reason given"
			}
			res.Context = append(res.Context, fmt.Sprintf("%s — day off: %s", displayName, reason))
		} else {
			res.Context = append(res.Context, displayName+" — working today")
		}
	}
	return nil
}

func summarizeEntryLine(e *store.StandupEntry) string {
	if e.IsDayOff {
		reason := e.DayOffReason
		if reason == "" {
			reason = "day off"
		}
		return fmt.Sprintf("%s: day off (%s)", e.Date, reason)
	}
	summary := strings.TrimSpace(e.Today)
	if summary == "" {
		summary = strings.TrimSpace(e.Yesterday)
	}
	if summary == "" {
		summary = "submitted"
	}
	if len(summary) > 120 {
		summary = summary[:120] + "…"
	}
	return fmt.Sprintf("%s: %s", e.Date, strings.ReplaceAll(summary, "\n", " / "))
}

// mustAddDays shifts a YYYY-MM-DD date string by n days.
func mustAddDays(date string, n int) string {
	d, err := time.Parse(store.DateFormat, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, n).Format(store.DateFormat)
}
