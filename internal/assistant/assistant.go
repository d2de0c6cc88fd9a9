package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/teampulse/teampulse/internal/analytics"
	"github.com/teampulse/teampulse/internal/intent"
	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/provider"
	"github.com/teampulse/teampulse/internal/status"
	"github.com/teampulse/teampulse/internal/store"
)

const (
	clarificationReply = "Who do you mean? Mention the person directly, e.g. `where is @alice?`, so I don't have to guess."

	trackerNotConfiguredReply = "Linear integration is not configured yet."
)

// MentionEvent is one app mention addressed to the bot.
type MentionEvent struct {
	Text      string
	UserID    string
	ChannelID string
	TS        string
	ThreadTS  string
}

// ReplyEvent is a message posted inside a thread the bot watches.
type ReplyEvent struct {
	Text      string
	UserID    string
	ChannelID string
	ThreadTS  string
	TS        string
}

// ThreadMessage is one message fetched from a thread, parent included.
type ThreadMessage struct {
	UserID string
	TS     string
	Text   string
}

// Messenger is the outbound chat surface.
type Messenger interface {
	Say(ctx context.Context, channelID, threadTS, text string) error
	SayBlocks(ctx context.Context, channelID, threadTS string, blocks []slack.Block) error
	ThreadReplies(ctx context.Context, channelID, threadTS string) ([]ThreadMessage, error)
}

// Prober checks tracker connectivity and reports the authenticated account.
type Prober interface {
	Probe(ctx context.Context) (string, error)
}

// WriteStore is the slice of the document store the assistant writes.
type WriteStore interface {
	UpsertEntry(entry *store.StandupEntry) error
}

// Deps carries everything the assistant needs. Tracker, Prober, LLM, and
// Writer may be nil; the matching features degrade gracefully.
type Deps struct {
	Store       DataStore
	Writer      WriteStore
	Resolver    *status.Resolver
	Names       *names.Cache
	Tracker     Tracker
	Prober      Prober
	LLM         provider.LLMProvider
	Messenger   Messenger
	BotUserID   string
	TeamSize    int
	MaxTokens   int
	Temperature float64
}

// Assistant routes mentions through the intent router, aggregator, and
// synthesizer, and replies on the messenger.
type Assistant struct {
	store      DataStore
	writer     WriteStore
	resolver   *status.Resolver
	names      *names.Cache
	aggregator *Aggregator
	synth      *Synthesizer
	engine     *analytics.Engine
	messenger  Messenger
	prober     Prober
	tracker    Tracker
	botUserID  string
}

func New(deps Deps) *Assistant {
	return &Assistant{
		store:      deps.Store,
		writer:     deps.Writer,
		resolver:   deps.Resolver,
		names:      deps.Names,
		aggregator: NewAggregator(deps.Store, deps.Resolver, deps.Names, deps.Tracker),
		synth:      NewSynthesizer(deps.LLM, deps.MaxTokens, deps.Temperature),
		engine:     analytics.NewEngine(deps.TeamSize),
		messenger:  deps.Messenger,
		prober:     deps.Prober,
		tracker:    deps.Tracker,
		botUserID:  deps.BotUserID,
	}
}

// HandleMention answers one mention. Replies always go to the thread the
// mention lives in (or start one on the mention itself).
func (a *Assistant) HandleMention(ctx context.Context, ev MentionEvent) error {
	replyTS := ev.ThreadTS
	if replyTS == "" {
		replyTS = ev.TS
	}

	q := intent.Parse(ev.Text, a.botUserID)
	slog.Info("mention routed",
		"user", ev.UserID,
		"mentions", len(q.Mentions),
		"tickets", len(q.Tickets),
		"clarify", q.NeedsClarification)

	switch {
	case q.Intents.Help:
		return a.messenger.SayBlocks(ctx, ev.ChannelID, replyTS, HelpBlocks())
	case q.Intents.ThreadSummary:
		return a.summarizeThread(ctx, ev, replyTS)
	case q.Intents.TrackerTest:
		return a.trackerSelfTest(ctx, ev.ChannelID, replyTS)
	}

	if q.NeedsClarification {
		return a.messenger.Say(ctx, ev.ChannelID, replyTS, clarificationReply)
	}

	// A pure ticket question against a disabled integration is answerable
	// without touching the store at all.
	if q.Intents.TicketStatus && a.tracker == nil && len(q.Mentions) == 0 {
		return a.messenger.Say(ctx, ev.ChannelID, replyTS, trackerNotConfiguredReply)
	}

	res, err := a.aggregator.Gather(ctx, q)
	if err != nil {
		slog.Error("context aggregation failed", "error", err)
		return a.messenger.Say(ctx, ev.ChannelID, replyTS,
			"Something went wrong while looking that up. Try again in a moment.")
	}

	if len(res.Profiles) > 0 {
		var blocks []slack.Block
		for i, p := range res.Profiles {
			if i > 0 {
				blocks = append(blocks, slack.NewDividerBlock())
			}
			blocks = append(blocks, ProfileBlocks(p)...)
		}
		return a.messenger.SayBlocks(ctx, ev.ChannelID, replyTS, blocks)
	}

	text, fromModel := a.synth.Respond(ctx, ev.Text, res.Context)

	// Availability-only answers render as structured blocks; anything
	// mixing in work summaries or tickets stays plain text so the model
	// answer reads as one piece.
	if len(res.Statuses) > 0 && !q.Intents.WorkSummary && !q.Intents.TicketStatus {
		summary := ""
		if fromModel {
			summary = text
		}
		return a.messenger.SayBlocks(ctx, ev.ChannelID, replyTS, AvailabilityBlocks(summary, res.Statuses))
	}
	return a.messenger.Say(ctx, ev.ChannelID, replyTS, text)
}

// summarizeThread analyzes today's standup thread, falling back to the
// thread the request was made in when no standup thread is recorded.
func (a *Assistant) summarizeThread(ctx context.Context, ev MentionEvent, replyTS string) error {
	today := a.resolver.Today()

	channelID, threadTS := ev.ChannelID, replyTS
	if th, ok, err := a.store.ThreadForDate(today); err != nil {
		slog.Warn("thread lookup failed", "date", today, "error", err)
	} else if ok {
		channelID, threadTS = th.ChannelID, th.ThreadTS
	}

	msgs, err := a.messenger.ThreadReplies(ctx, channelID, threadTS)
	if err != nil {
		slog.Error("thread fetch failed", "channel", channelID, "error", err)
		return a.messenger.Say(ctx, ev.ChannelID, replyTS,
			"I couldn't read the standup thread. Try again in a moment.")
	}

	opened := parseSlackTS(threadTS)
	var replies []analytics.Reply
	for _, m := range msgs {
		if m.TS == threadTS || m.UserID == a.botUserID {
			continue
		}
		replies = append(replies, analytics.Reply{
			Author:    m.UserID,
			Timestamp: parseSlackTS(m.TS),
			Text:      m.Text,
		})
	}

	entries, err := a.store.EntriesOn(today)
	if err != nil {
		slog.Warn("entry scan failed", "date", today, "error", err)
	}

	stats := a.engine.Analyze(opened, replies, entries)
	blocks := ThreadSummaryBlocks(stats, func(userID string) string {
		return a.names.DisplayName(ctx, userID)
	})
	return a.messenger.SayBlocks(ctx, ev.ChannelID, replyTS, blocks)
}

func (a *Assistant) trackerSelfTest(ctx context.Context, channelID, replyTS string) error {
	if a.prober == nil {
		return a.messenger.Say(ctx, channelID, replyTS, trackerNotConfiguredReply)
	}
	account, err := a.prober.Probe(ctx)
	if err != nil {
		return a.messenger.Say(ctx, channelID, replyTS,
			fmt.Sprintf("❌ Linear connectivity check failed: %v", err))
	}
	return a.messenger.Say(ctx, channelID, replyTS,
		fmt.Sprintf("✅ Linear connection OK, authenticated as %s.", account))
}

// HandleStandupReply records a thread reply as that person's entry for
// today when the reply lives in today's standup thread and parses into
// something usable. Non-submissions are silently ignored.
func (a *Assistant) HandleStandupReply(ctx context.Context, ev ReplyEvent) error {
	if a.writer == nil || ev.UserID == a.botUserID || ev.ThreadTS == "" {
		return nil
	}

	today := a.resolver.Today()
	th, ok, err := a.store.ThreadForDate(today)
	if err != nil {
		return fmt.Errorf("lookup standup thread: %w", err)
	}
	if !ok || th.ThreadTS != ev.ThreadTS || th.ChannelID != ev.ChannelID {
		return nil
	}

	entry, ok := ParseSubmission(ev.Text)
	if !ok {
		return nil
	}
	entry.UserID = ev.UserID
	entry.Date = today
	if err := a.writer.UpsertEntry(entry); err != nil {
		return fmt.Errorf("save standup entry: %w", err)
	}
	slog.Info("standup entry recorded", "user", ev.UserID, "date", today, "day_off", entry.IsDayOff)
	return nil
}

// parseSlackTS converts a Slack "seconds.micros" timestamp into a
// time.Time. Malformed input yields the zero time.
func parseSlackTS(ts string) time.Time {
	sec, frac, _ := strings.Cut(ts, ".")
	seconds, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}
	}
	var micros int64
	if frac != "" {
		if m, err := strconv.ParseInt(frac, 10, 64); err == nil {
			micros = m
		}
	}
	return time.Unix(seconds, micros*1000).UTC()
}
