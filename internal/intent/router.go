// Package intent classifies incoming mention text into intents, mentioned
// users, and ticket identifiers. Routing is a pure function of the text.
package intent

import (
	"regexp"
	"strings"
)

// Intents is the set of non-exclusive classifications for one query.
type Intents struct {
	Availability  bool
	WorkSummary   bool
	Performance   bool
	FullProfile   bool
	TicketStatus  bool
	ThreadSummary bool
	Help          bool
	TrackerTest   bool
}

// Any reports whether at least one flag is set.
func (i Intents) Any() bool {
	return i.Availability || i.WorkSummary || i.Performance || i.FullProfile ||
		i.TicketStatus || i.ThreadSummary || i.Help || i.TrackerTest
}

// RequiresMention reports whether the set contains an intent that only makes
// sense for a specific person.
func (i Intents) RequiresMention() bool {
	return i.Availability || i.WorkSummary || i.Performance || i.FullProfile
}

// Query is the router's output for one incoming message.
type Query struct {
	Text     string
	Intents  Intents
	Mentions []string
	Tickets  []string

	// NeedsClarification is set when a person-scoped intent was detected
	// with no mentioned person. The engine must never guess a default
	// person; the caller replies with a clarification prompt and stops.
	NeedsClarification bool

	// GeneralSearch is set when nothing else matched; TeamWide narrows it
	// to the whole-team variant ("team", "everyone", "who").
	GeneralSearch bool
	TeamWide      bool
}

var (
	mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)
	ticketPattern  = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)
)

var availabilityWords = []string{
	"where", "ooo", "out of office", "day off", "off today", "availability",
	"available", "vacation",
}

var workWords = []string{"working", "doing", "worked", "update", "task"}

var performanceWords = []string{"performance", "profile", "stats", "metrics", "score"}

var profileWords = []string{"about", "everything"}

var teamWords = []string{"team", "everyone", "who"}

// Parse routes raw mention text. botUserID is excluded from the mention
// list so the assistant never treats itself as a subject.
//
// Branch precedence is load-bearing: help, then thread summary, then the
// tracker self-test are exclusive and win over keyword-derived flags.
func Parse(text, botUserID string) Query {
	q := Query{Text: text}
	normalized := strings.ToLower(text)

	if containsWord(normalized, "help") {
		q.Intents.Help = true
		return q
	}
	if containsWord(normalized, "summarize") || containsWord(normalized, "summary") {
		q.Intents.ThreadSummary = true
		return q
	}
	if strings.Contains(normalized, "linear test") || strings.Contains(normalized, "test linear") {
		q.Intents.TrackerTest = true
		return q
	}

	q.Mentions = extractMentions(text, botUserID)
	q.Tickets = extractTickets(text)

	if containsAny(normalized, availabilityWords) {
		q.Intents.Availability = true
	}
	// "status" is ambiguous: with a ticket identifier in the text it asks
	// about the ticket, otherwise about a person.
	if containsWord(normalized, "status") && len(q.Tickets) == 0 {
		q.Intents.Availability = true
	}
	if containsAny(normalized, workWords) {
		q.Intents.WorkSummary = true
	}
	if containsAny(normalized, performanceWords) {
		q.Intents.Performance = true
	}
	if containsAny(normalized, profileWords) {
		q.Intents.FullProfile = true
		q.Intents.Availability = true
		q.Intents.WorkSummary = true
		q.Intents.Performance = true
	}
	if len(q.Tickets) > 0 {
		q.Intents.TicketStatus = true
	}

	if q.Intents.RequiresMention() && len(q.Mentions) == 0 {
		q.NeedsClarification = true
		return q
	}
	if !q.Intents.Any() && len(q.Mentions) > 0 {
		q.Intents.Availability = true
		q.Intents.WorkSummary = true
		return q
	}
	if !q.Intents.Any() && len(q.Mentions) == 0 && len(q.Tickets) == 0 {
		q.GeneralSearch = true
		q.TeamWide = containsAny(normalized, teamWords)
	}
	return q
}

func extractMentions(text, botUserID string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		id := m[1]
		if id == botUserID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func extractTickets(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range ticketPattern.FindAllString(text, -1) {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func containsAny(normalized string, words []string) bool {
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(normalized, w) {
				return true
			}
			continue
		}
		if containsWord(normalized, w) {
			return true
		}
	}
	return false
}

// containsWord matches whole words (plus a plural "s") so that "who" does
// not fire inside "whole" or "task" inside "multitasking".
func containsWord(normalized, word string) bool {
	idx := 0
	for {
		i := strings.Index(normalized[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		if end < len(normalized) && normalized[end] == 's' {
			end++
		}
		if (start == 0 || !isWordByte(normalized[start-1])) &&
			(end == len(normalized) || !isWordByte(normalized[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
