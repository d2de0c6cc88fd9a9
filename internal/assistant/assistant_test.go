package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/status"
	"github.com/teampulse/teampulse/internal/store"
)

const testBotID = "UBOT"

func newTestAssistant(t *testing.T, data *fakeData, deps func(*Deps)) (*Assistant, *fakeMessenger) {
	t.Helper()
	messenger := &fakeMessenger{}
	resolver := status.New(data, time.UTC).WithClock(func() time.Time { return testNow })
	d := Deps{
		Store:    data,
		Writer:   data,
		Resolver: resolver,
		Names: testNames(map[string]names.Profile{
			"U1": {DisplayName: "Alice", Email: "alice@example.com"},
			"U2": {DisplayName: "Bob", Email: "bob@example.com"},
		}),
		Messenger: messenger,
		BotUserID: testBotID,
		TeamSize:  18,
	}
	if deps != nil {
		deps(&d)
	}
	return New(d), messenger
}

func mention(text string) MentionEvent {
	return MentionEvent{
		Text:      "<@" + testBotID + "> " + text,
		UserID:    "UASK",
		ChannelID: "C1",
		TS:        "1787000000.000100",
	}
}

func TestHandleMentionHelp(t *testing.T) {
	a, messenger := newTestAssistant(t, newFakeData(), nil)
	if err := a.HandleMention(context.Background(), mention("help")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	last := messenger.last()
	if len(last.blocks) == 0 {
		t.Fatal("help should reply with blocks")
	}
	if last.threadTS != "1787000000.000100" {
		t.Errorf("reply should thread on the mention, got %q", last.threadTS)
	}
}

func TestHandleMentionClarification(t *testing.T) {
	data := newFakeData()
	a, messenger := newTestAssistant(t, data, nil)
	if err := a.HandleMention(context.Background(), mention("is anyone on vacation?")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	if messenger.last().text != clarificationReply {
		t.Errorf("got %q, want the clarification prompt", messenger.last().text)
	}
}

func TestHandleMentionTicketWithoutTracker(t *testing.T) {
	data := newFakeData()
	a, messenger := newTestAssistant(t, data, nil)
	if err := a.HandleMention(context.Background(), mention("status of ABC-123?")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	if messenger.last().text != trackerNotConfiguredReply {
		t.Errorf("got %q, want the not-configured reply", messenger.last().text)
	}
	if data.reads != 0 {
		t.Errorf("store was read %d times; a disabled-tracker ticket question needs no store access", data.reads)
	}
}

func TestHandleMentionAvailabilityRendersBlocks(t *testing.T) {
	data := newFakeData()
	data.add(&store.StandupEntry{UserID: "U1", Date: testToday, Today: "api work"})
	a, messenger := newTestAssistant(t, data, nil)

	if err := a.HandleMention(context.Background(), mention("where is <@U1>?")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	last := messenger.last()
	if len(last.blocks) == 0 {
		t.Fatal("availability reply should use blocks")
	}
	if data.reads == 0 {
		t.Error("expected store reads for an availability question")
	}
}

func TestHandleMentionWorkSummaryIsText(t *testing.T) {
	data := newFakeData()
	data.add(&store.StandupEntry{UserID: "U1", Date: testToday, Today: "payment retries"})
	a, messenger := newTestAssistant(t, data, nil)

	if err := a.HandleMention(context.Background(), mention("what is <@U1> working on?")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	last := messenger.last()
	if last.blocks != nil {
		t.Fatal("work-summary reply should be plain text")
	}
	if !strings.Contains(last.text, "payment retries") {
		t.Errorf("reply missing standup content: %q", last.text)
	}
}

func TestHandleMentionTrackerSelfTest(t *testing.T) {
	a, messenger := newTestAssistant(t, newFakeData(), nil)
	if err := a.HandleMention(context.Background(), mention("linear test")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	if messenger.last().text != trackerNotConfiguredReply {
		t.Errorf("without a prober, got %q", messenger.last().text)
	}

	a, messenger = newTestAssistant(t, newFakeData(), func(d *Deps) {
		d.Prober = &fakeProber{account: "Jane Doe"}
	})
	if err := a.HandleMention(context.Background(), mention("linear test")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	if !strings.Contains(messenger.last().text, "Jane Doe") {
		t.Errorf("probe reply missing account: %q", messenger.last().text)
	}
}

func TestHandleMentionThreadSummary(t *testing.T) {
	data := newFakeData()
	data.thread = &store.StandupThread{Date: testToday, ChannelID: "C9", ThreadTS: "1787000000.000001"}
	data.add(&store.StandupEntry{UserID: "U1", Date: testToday, Today: "api work"})
	a, messenger := newTestAssistant(t, data, nil)
	messenger.replies = []ThreadMessage{
		{UserID: testBotID, TS: "1787000000.000001", Text: "Standup time!"},
		{UserID: "U1", TS: "1787000600.000001", Text: "Today:\n- api work"},
		{UserID: "U2", TS: "1787003600.000001", Text: "Today:\n- reviews"},
	}

	if err := a.HandleMention(context.Background(), mention("summarize")); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}
	last := messenger.last()
	if len(last.blocks) == 0 {
		t.Fatal("thread summary should reply with blocks")
	}
	if last.channelID != "C1" {
		t.Errorf("summary should land where it was asked for, got channel %q", last.channelID)
	}
}

func TestHandleStandupReplyRecordsEntry(t *testing.T) {
	data := newFakeData()
	data.thread = &store.StandupThread{Date: testToday, ChannelID: "C9", ThreadTS: "1787000000.000001"}
	a, _ := newTestAssistant(t, data, nil)

	ev := ReplyEvent{
		Text:      "Yesterday: webhook fix\nToday: payment retries",
		UserID:    "U1",
		ChannelID: "C9",
		ThreadTS:  "1787000000.000001",
		TS:        "1787000600.000001",
	}
	if err := a.HandleStandupReply(context.Background(), ev); err != nil {
		t.Fatalf("HandleStandupReply: %v", err)
	}
	if len(data.upserts) != 1 {
		t.Fatalf("got %d upserts, want 1", len(data.upserts))
	}
	got := data.upserts[0]
	if got.UserID != "U1" || got.Date != testToday {
		t.Errorf("entry keyed as %s/%s", got.UserID, got.Date)
	}
	if got.Today != "payment retries" {
		t.Errorf("today = %q", got.Today)
	}
}

func TestHandleStandupReplyIgnoresOtherThreads(t *testing.T) {
	data := newFakeData()
	data.thread = &store.StandupThread{Date: testToday, ChannelID: "C9", ThreadTS: "1787000000.000001"}
	a, _ := newTestAssistant(t, data, nil)

	ev := ReplyEvent{Text: "Today: stuff", UserID: "U1", ChannelID: "C9", ThreadTS: "1787099999.000001"}
	if err := a.HandleStandupReply(context.Background(), ev); err != nil {
		t.Fatalf("HandleStandupReply: %v", err)
	}
	if len(data.upserts) != 0 {
		t.Fatalf("reply outside the standup thread must not be recorded")
	}
}

func TestHandleStandupReplyIgnoresBot(t *testing.T) {
	data := newFakeData()
	data.thread = &store.StandupThread{Date: testToday, ChannelID: "C9", ThreadTS: "1787000000.000001"}
	a, _ := newTestAssistant(t, data, nil)

	ev := ReplyEvent{Text: "Today: stuff", UserID: testBotID, ChannelID: "C9", ThreadTS: "1787000000.000001"}
	if err := a.HandleStandupReply(context.Background(), ev); err != nil {
		t.Fatalf("HandleStandupReply: %v", err)
	}
	if len(data.upserts) != 0 {
		t.Fatalf("the bot's own messages must not be recorded")
	}
}

func TestParseSlackTS(t *testing.T) {
	got := parseSlackTS("1787000000.000100")
	want := time.Unix(1787000000, 100*1000).UTC()
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if !parseSlackTS("garbage").IsZero() {
		t.Error("malformed ts should yield the zero time")
	}
}
