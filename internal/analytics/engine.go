// Package analytics turns a standup thread's free-text replies into
// structured per-user and per-team metrics. Everything is recomputed from
// scratch per request; the engine holds no aggregate state.
package analytics

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/teampulse/teampulse/internal/store"
)

// Reply is one non-bot message inside a standup thread.
type Reply struct {
	Author    string
	Timestamp time.Time
	Text      string
}

// TopicCount is one extracted topic with its frequency.
type TopicCount struct {
	Word  string
	Count int
}

// Buckets is the response-time histogram relative to the thread opening.
type Buckets struct {
	Within1h int
	Within3h int
	Within8h int
	Over8h   int
}

// MemberSummary is one roster member's rollup for the day.
type MemberSummary struct {
	UserID       string
	Replied      bool
	TaskCount    int
	HasBlocker   bool
	DayOff       bool
	DayOffReason string
}

// ThreadStats is the full analytics result for one thread.
type ThreadStats struct {
	Participants   []string
	TeamSize       int
	CompletionRate int
	TotalTasks     int
	TasksByAuthor  map[string]int
	BlockerCount   int
	BlockedAuthors []string
	Buckets        Buckets
	TopTopics      []TopicCount
	Members        []MemberSummary
}

// Engine computes thread analytics against a fixed team-size denominator.
type Engine struct {
	teamSize int
}

// NewEngine creates an Engine. teamSize is the completion-rate denominator.
func NewEngine(teamSize int) *Engine {
	if teamSize <= 0 {
		teamSize = 1
	}
	return &Engine{teamSize: teamSize}
}

var (
	dayHeaderPattern = regexp.MustCompile(`(?im)^\s*\*?(today|yesterday|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\*?\s*:`)
	itemPattern      = regexp.MustCompile(`(?m)^\s*(?:[•\-–]|\d+\.)\s*(\S.*)$`)
	wordPattern      = regexp.MustCompile(`[a-z0-9]+`)
)

// stopWords filters standup boilerplate and function words out of topic
// extraction. Words of length <= 4 are dropped before this list applies.
var stopWords = map[string]bool{
	"about": true, "after": true, "again": true, "before": true,
	"blocker": true, "blockers": true, "could": true, "doing": true,
	"finish": true, "finished": true, "going": true, "might": true,
	"other": true, "should": true, "still": true, "their": true,
	"there": true, "these": true, "thing": true, "things": true,
	"those": true, "today": true, "tomorrow": true, "where": true,
	"which": true, "while": true, "working": true, "would": true,
	"yesterday": true,
}

const topTopicLimit = 8

// Analyze computes the rollup for one thread in a single pass. opened is
// the thread's opening timestamp; entries are the persisted submissions for
// the thread date (people who marked a day off without replying in-thread).
func (e *Engine) Analyze(opened time.Time, replies []Reply, entries []store.StandupEntry) *ThreadStats {
	stats := &ThreadStats{
		TeamSize:      e.teamSize,
		TasksByAuthor: make(map[string]int),
	}

	seenParticipant := make(map[string]bool)
	blockedSeen := make(map[string]bool)
	topicCounts := make(map[string]int)
	topicOrder := make(map[string]int)

	for _, reply := range replies {
		if !seenParticipant[reply.Author] {
			seenParticipant[reply.Author] = true
			stats.Participants = append(stats.Participants, reply.Author)
		}

		if n := countTaskItems(reply.Text); n > 0 {
			stats.TasksByAuthor[reply.Author] += n
			stats.TotalTasks += n
		}

		if carriesBlocker(reply.Text) {
			stats.BlockerCount++
			if !blockedSeen[reply.Author] {
				blockedSeen[reply.Author] = true
				stats.BlockedAuthors = append(stats.BlockedAuthors, reply.Author)
			}
		}

		bucketResponse(&stats.Buckets, reply.Timestamp.Sub(opened))
		tallyTopics(reply.Text, topicCounts, topicOrder)
	}

	stats.CompletionRate = int(math.Round(float64(len(stats.Participants)) / float64(e.teamSize) * 100))
	stats.TopTopics = topTopics(topicCounts, topicOrder)
	stats.Members = e.reconcileRoster(stats, blockedSeen, entries)
	return stats
}

// countTaskItems counts bullet or numbered items in a reply that carries a
// day-label section header. Replies without such a header contribute 0.
func countTaskItems(text string) int {
	if !dayHeaderPattern.MatchString(text) {
		return 0
	}
	return countMarkers(text)
}

func countMarkers(text string) int {
	n := 0
	for _, m := range itemPattern.FindAllStringSubmatch(text, -1) {
		if strings.TrimSpace(m[1]) != "" {
			n++
		}
	}
	return n
}

// carriesBlocker reports whether a reply declares a blocker. "blocker: none"
// (and the plural form) explicitly declares the absence of one.
func carriesBlocker(text string) bool {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "blocker:") && !strings.Contains(lower, "blockers:") {
		return false
	}
	if strings.Contains(lower, "blocker: none") || strings.Contains(lower, "blockers: none") {
		return false
	}
	return true
}

func bucketResponse(b *Buckets, d time.Duration) {
	hours := d.Hours()
	switch {
	case hours <= 1:
		b.Within1h++
	case hours <= 3:
		b.Within3h++
	case hours <= 8:
		b.Within8h++
	default:
		b.Over8h++
	}
}

func tallyTopics(text string, counts map[string]int, order map[string]int) {
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(word) <= 4 || stopWords[word] {
			continue
		}
		if _, seen := order[word]; !seen {
			order[word] = len(order)
		}
		counts[word]++
	}
}

// topTopics returns the most frequent topics, ties broken by discovery order.
func topTopics(counts map[string]int, order map[string]int) []TopicCount {
	out := make([]TopicCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, TopicCount{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return order[out[i].Word] < order[out[j].Word]
	})
	if len(out) > topTopicLimit {
		out = out[:topTopicLimit]
	}
	return out
}

// reconcileRoster unions thread participants with everyone holding a
// persisted entry for the date, so day-off markers without an in-thread
// reply still appear.
func (e *Engine) reconcileRoster(stats *ThreadStats, blockedSeen map[string]bool, entries []store.StandupEntry) []MemberSummary {
	entryByUser := make(map[string]*store.StandupEntry, len(entries))
	for i := range entries {
		entryByUser[entries[i].UserID] = &entries[i]
	}

	var members []MemberSummary
	covered := make(map[string]bool)

	for _, userID := range stats.Participants {
		m := MemberSummary{
			UserID:     userID,
			Replied:    true,
			TaskCount:  stats.TasksByAuthor[userID],
			HasBlocker: blockedSeen[userID],
		}
		if entry := entryByUser[userID]; entry != nil {
			m.DayOff = entry.IsDayOff
			m.DayOffReason = entry.DayOffReason
			if m.TaskCount == 0 {
				m.TaskCount = persistedTaskCount(entry)
			}
		}
		covered[userID] = true
		members = append(members, m)
	}

	for i := range entries {
		entry := &entries[i]
		if covered[entry.UserID] {
			continue
		}
		members = append(members, MemberSummary{
			UserID:       entry.UserID,
			TaskCount:    persistedTaskCount(entry),
			DayOff:       entry.IsDayOff,
			DayOffReason: entry.DayOffReason,
		})
	}
	return members
}

// persistedTaskCount derives a task count from a stored entry's today
// section: marker count, minimum 1 when the section is non-empty.
func persistedTaskCount(entry *store.StandupEntry) int {
	if entry.IsDayOff {
		return 0
	}
	if n := countMarkers(entry.Today); n > 0 {
		return n
	}
	if strings.TrimSpace(entry.Today) != "" {
		return 1
	}
	return 0
}
