// Package slackbridge connects the assistant to Slack over Socket Mode.
// It is the only package that talks to the Slack API directly.
package slackbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/teampulse/teampulse/internal/assistant"
	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/store"
)

// Handler receives the events the bridge cares about.
type Handler interface {
	HandleMention(ctx context.Context, ev assistant.MentionEvent) error
	HandleStandupReply(ctx context.Context, ev assistant.ReplyEvent) error
}

// ThreadRecorder persists the daily standup thread reference.
type ThreadRecorder interface {
	UpsertThread(th *store.StandupThread) error
}

// Bridge runs the Socket Mode event loop and implements the assistant's
// outbound Messenger.
type Bridge struct {
	api            *slack.Client
	sock           *socketmode.Client
	handler        Handler
	threads        ThreadRecorder
	botUserID      string
	standupChannel string
}

// Options configures a Bridge. BotUserID may be empty; it is discovered
// via auth.test on startup.
type Options struct {
	BotToken       string
	AppToken       string
	BotUserID      string
	StandupChannel string
	Threads        ThreadRecorder
}

func New(opts Options) (*Bridge, error) {
	if strings.TrimSpace(opts.BotToken) == "" {
		return nil, errors.New("missing slack bot token")
	}
	if strings.TrimSpace(opts.AppToken) == "" {
		return nil, errors.New("missing slack app token")
	}
	api := slack.New(
		strings.TrimSpace(opts.BotToken),
		slack.OptionAppLevelToken(strings.TrimSpace(opts.AppToken)),
	)
	return &Bridge{
		api:            api,
		sock:           socketmode.New(api),
		threads:        opts.Threads,
		botUserID:      strings.TrimSpace(opts.BotUserID),
		standupChannel: strings.TrimSpace(opts.StandupChannel),
	}, nil
}

// SetHandler wires the event consumer. Must be called before Run.
func (b *Bridge) SetHandler(h Handler) { b.handler = h }

// BotUserID returns the bot's own user ID once known.
func (b *Bridge) BotUserID() string { return b.botUserID }

// Authenticate verifies the bot token and fills in the bot user ID when
// it was not configured.
func (b *Bridge) Authenticate(ctx context.Context) error {
	auth, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	if b.botUserID == "" {
		b.botUserID = auth.UserID
	}
	slog.Info("slack authenticated", "team", auth.Team, "bot_user", auth.UserID)
	return nil
}

// Run pumps Socket Mode events until ctx is canceled. Each event is
// handled on its own goroutine so a slow lookup never stalls the ack loop.
func (b *Bridge) Run(ctx context.Context) error {
	if b.handler == nil {
		return errors.New("bridge handler not set")
	}
	go func() {
		for evt := range b.sock.Events {
			switch evt.Type {
			case socketmode.EventTypeConnected:
				slog.Info("slack socket connected")
			case socketmode.EventTypeConnectionError:
				slog.Warn("slack socket connection error")
			case socketmode.EventTypeEventsAPI:
				if evt.Request != nil {
					b.sock.Ack(*evt.Request)
				}
				ev, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok || ev.Type != slackevents.CallbackEvent {
					continue
				}
				go b.dispatch(ctx, ev)
			}
		}
	}()
	return b.sock.RunContext(ctx)
}

func (b *Bridge) dispatch(ctx context.Context, ev slackevents.EventsAPIEvent) {
	switch in := ev.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		if in == nil || in.User == b.botUserID {
			return
		}
		err := b.handler.HandleMention(ctx, assistant.MentionEvent{
			Text:      in.Text,
			UserID:    in.User,
			ChannelID: in.Channel,
			TS:        in.TimeStamp,
			ThreadTS:  in.ThreadTimeStamp,
		})
		if err != nil {
			slog.Error("mention handling failed", "user", in.User, "error", err)
		}
	case *slackevents.MessageEvent:
		if in == nil || in.BotID != "" || in.SubType != "" || in.ThreadTimeStamp == "" {
			return
		}
		// Mentions arrive separately as app_mention; skip them here so a
		// question in the standup thread is not recorded as a submission.
		if b.botUserID != "" && strings.Contains(in.Text, "<@"+b.botUserID+">") {
			return
		}
		err := b.handler.HandleStandupReply(ctx, assistant.ReplyEvent{
			Text:      in.Text,
			UserID:    in.User,
			ChannelID: in.Channel,
			ThreadTS:  in.ThreadTimeStamp,
			TS:        in.TimeStamp,
		})
		if err != nil {
			slog.Error("standup reply handling failed", "user", in.User, "error", err)
		}
	}
}

// Say posts a plain text message, threading when threadTS is set.
func (b *Bridge) Say(ctx context.Context, channelID, threadTS, text string) error {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if ts := strings.TrimSpace(threadTS); ts != "" {
		opts = append(opts, slack.MsgOptionTS(ts))
	}
	return b.post(ctx, channelID, opts...)
}

// SayBlocks posts a Block Kit message with a plain-text fallback.
func (b *Bridge) SayBlocks(ctx context.Context, channelID, threadTS string, blocks []slack.Block) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText("TeamPulse update", false),
		slack.MsgOptionBlocks(blocks...),
	}
	if ts := strings.TrimSpace(threadTS); ts != "" {
		opts = append(opts, slack.MsgOptionTS(ts))
	}
	return b.post(ctx, channelID, opts...)
}

func (b *Bridge) post(ctx context.Context, channelID string, opts ...slack.MsgOption) error {
	return withRetry(3, 200*time.Millisecond, func() (bool, error) {
		_, _, err := b.api.PostMessageContext(ctx, channelID, opts...)
		return retryDecision(err)
	})
}

// ThreadReplies fetches every message in a thread, parent included.
func (b *Bridge) ThreadReplies(ctx context.Context, channelID, threadTS string) ([]assistant.ThreadMessage, error) {
	var out []assistant.ThreadMessage
	cursor := ""
	for {
		msgs, hasMore, next, err := b.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: channelID,
			Timestamp: threadTS,
			Cursor:    cursor,
			Limit:     200,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch thread replies: %w", err)
		}
		for _, m := range msgs {
			out = append(out, assistant.ThreadMessage{
				UserID: m.User,
				TS:     m.Timestamp,
				Text:   m.Text,
			})
		}
		if !hasMore || next == "" {
			break
		}
		cursor = next
	}
	return out, nil
}

// ResolveProfile is the names.Resolver backed by users.info.
func (b *Bridge) ResolveProfile(ctx context.Context, userID string) (names.Profile, error) {
	user, err := b.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return names.Profile{}, fmt.Errorf("slack user lookup: %w", err)
	}
	displayName := user.Profile.DisplayName
	if displayName == "" {
		displayName = user.RealName
	}
	if displayName == "" {
		displayName = user.Name
	}
	return names.Profile{
		DisplayName: displayName,
		Email:       user.Profile.Email,
		AvatarURL:   user.Profile.Image192,
	}, nil
}

// OpenStandupThread posts the daily prompt to the standup channel and
// records the resulting thread for date. No-op when no channel is set.
func (b *Bridge) OpenStandupThread(ctx context.Context, date string) error {
	if b.standupChannel == "" {
		return errors.New("no standup channel configured")
	}
	var ts string
	err := withRetry(3, 200*time.Millisecond, func() (bool, error) {
		var err error
		_, ts, err = b.api.PostMessageContext(ctx, b.standupChannel,
			slack.MsgOptionText(fmt.Sprintf(
				"🌅 Standup for %s! Reply in this thread with what you did yesterday, what you're doing today, and any blockers. Off today? Just say `off today: reason`.", date), false))
		return retryDecision(err)
	})
	if err != nil {
		return fmt.Errorf("open standup thread: %w", err)
	}
	if b.threads != nil {
		if err := b.threads.UpsertThread(&store.StandupThread{
			Date:      date,
			ChannelID: b.standupChannel,
			ThreadTS:  ts,
		}); err != nil {
			return fmt.Errorf("record standup thread: %w", err)
		}
	}
	slog.Info("standup thread opened", "date", date, "channel", b.standupChannel, "ts", ts)
	return nil
}

// withRetry runs fn up to attempts times, sleeping base between tries,
// until fn reports no retry.
func withRetry(attempts int, base time.Duration, fn func() (retry bool, err error)) error {
	var err error
	for i := 0; i < attempts; i++ {
		var retry bool
		retry, err = fn()
		if err == nil || !retry {
			return err
		}
		time.Sleep(base)
	}
	return err
}

func retryDecision(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	var rle *slack.RateLimitedError
	if errors.As(err, &rle) && rle != nil {
		if rle.RetryAfter > 0 {
			time.Sleep(rle.RetryAfter)
		}
		return true, err
	}
	return false, err
}
