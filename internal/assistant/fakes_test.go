package assistant

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/slack-go/slack"

	"github.com/teampulse/teampulse/internal/linear"
	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/provider"
	"github.com/teampulse/teampulse/internal/store"
)

// testNow pins the clock for every assistant test: Saturday afternoon.
var testNow = time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

const testToday = "2026-08-29"

type fakeData struct {
	entries      map[string]map[string]*store.StandupEntry // user -> date
	thread       *store.StandupThread
	metrics      map[string]map[string]*store.PerformanceMetrics // user -> kind
	achievements map[string][]store.Achievement
	alerts       map[string][]store.Alert

	upserts []*store.StandupEntry
	reads   int
}

func newFakeData() *fakeData {
	return &fakeData{
		entries:      map[string]map[string]*store.StandupEntry{},
		metrics:      map[string]map[string]*store.PerformanceMetrics{},
		achievements: map[string][]store.Achievement{},
		alerts:       map[string][]store.Alert{},
	}
}

func (f *fakeData) add(e *store.StandupEntry) {
	if f.entries[e.UserID] == nil {
		f.entries[e.UserID] = map[string]*store.StandupEntry{}
	}
	f.entries[e.UserID][e.Date] = e
}

func (f *fakeData) Entry(userID, date string) (*store.StandupEntry, bool, error) {
	f.reads++
	e, ok := f.entries[userID][date]
	return e, ok, nil
}

func (f *fakeData) LatestEntryBefore(userID, date string) (*store.StandupEntry, bool, error) {
	f.reads++
	var best *store.StandupEntry
	for d, e := range f.entries[userID] {
		if d < date && (best == nil || d > best.Date) {
			best = e
		}
	}
	return best, best != nil, nil
}

func (f *fakeData) NextDayOffAfter(userID, date string) (*store.StandupEntry, bool, error) {
	f.reads++
	var best *store.StandupEntry
	for d, e := range f.entries[userID] {
		if d > date && e.IsDayOff && (best == nil || d < best.Date) {
			best = e
		}
	}
	return best, best != nil, nil
}

func (f *fakeData) EntriesBetween(userID, from, to string) ([]store.StandupEntry, error) {
	f.reads++
	var out []store.StandupEntry
	for d, e := range f.entries[userID] {
		if d >= from && d <= to {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeData) EntriesOn(date string) ([]store.StandupEntry, error) {
	f.reads++
	var out []store.StandupEntry
	for _, byDate := range f.entries {
		if e, ok := byDate[date]; ok {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeData) ThreadForDate(date string) (*store.StandupThread, bool, error) {
	f.reads++
	if f.thread != nil && f.thread.Date == date {
		return f.thread, true, nil
	}
	return nil, false, nil
}

func (f *fakeData) LatestMetrics(userID, periodKind string) (*store.PerformanceMetrics, bool, error) {
	f.reads++
	m, ok := f.metrics[userID][periodKind]
	return m, ok, nil
}

func (f *fakeData) ActiveAchievements(userID string, limit int) ([]store.Achievement, error) {
	f.reads++
	a := f.achievements[userID]
	if len(a) > limit {
		a = a[:limit]
	}
	return a, nil
}

func (f *fakeData) RecentAlerts(userID string, days, limit int) ([]store.Alert, error) {
	f.reads++
	a := f.alerts[userID]
	if len(a) > limit {
		a = a[:limit]
	}
	return a, nil
}

func (f *fakeData) UpsertEntry(entry *store.StandupEntry) error {
	f.upserts = append(f.upserts, entry)
	return nil
}

func testNames(known map[string]names.Profile) *names.Cache {
	return names.NewCache(func(ctx context.Context, userID string) (names.Profile, error) {
		p, ok := known[userID]
		if !ok {
			return names.Profile{}, errors.New("unknown user")
		}
		return p, nil
	})
}

type fakeTracker struct {
	usersByEmail map[string]*linear.User
	issuesByUser map[string][]linear.Issue
	issuesByID   map[string]*linear.Issue
	lookupErr    error
}

func (f *fakeTracker) UserByEmail(ctx context.Context, email string) (*linear.User, bool, error) {
	u, ok := f.usersByEmail[email]
	return u, ok, nil
}

func (f *fakeTracker) ActiveIssues(ctx context.Context, assigneeID string, limit int) ([]linear.Issue, error) {
	return f.issuesByUser[assigneeID], nil
}

func (f *fakeTracker) IssueByIdentifier(ctx context.Context, identifier string) (*linear.Issue, bool, error) {
	if f.lookupErr != nil {
		return nil, false, f.lookupErr
	}
	issue, ok := f.issuesByID[identifier]
	return issue, ok, nil
}

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &provider.ChatResponse{Content: f.reply, FinishReason: "stop"}, nil
}

func (f *fakeLLM) DefaultModel() string { return "fake-model" }

type sentMessage struct {
	channelID string
	threadTS  string
	text      string
	blocks    []slack.Block
}

type fakeMessenger struct {
	sent    []sentMessage
	replies []ThreadMessage
}

func (f *fakeMessenger) Say(ctx context.Context, channelID, threadTS, text string) error {
	f.sent = append(f.sent, sentMessage{channelID: channelID, threadTS: threadTS, text: text})
	return nil
}

func (f *fakeMessenger) SayBlocks(ctx context.Context, channelID, threadTS string, blocks []slack.Block) error {
	f.sent = append(f.sent, sentMessage{channelID: channelID, threadTS: threadTS, blocks: blocks})
	return nil
}

func (f *fakeMessenger) ThreadReplies(ctx context.Context, channelID, threadTS string) ([]ThreadMessage, error) {
	return f.replies, nil
}

func (f *fakeMessenger) last() sentMessage {
	return f.sent[len(f.sent)-1]
}

type fakeProber struct {
	account string
	err     error
}

func (f *fakeProber) Probe(ctx context.Context) (string, error) {
	return f.account, f.err
}
