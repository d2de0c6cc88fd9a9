package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/assistant"
	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/linear"
	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/provider"
	"github.com/teampulse/teampulse/internal/status"
	"github.com/teampulse/teampulse/internal/store"
)

var askMessage string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask the assistant a question from the terminal",
	Long:  "Answers against the local database without connecting to Slack. Mention people by user ID, e.g. `teampulse ask -m \"where is <@U123ABC>?\"`.",
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMessage, "message", "m", "", "Question to ask")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(askMessage) == "" {
		return errors.New("--message is required")
	}

	printHeader("💬 TeamPulse")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := store.New(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	loc, err := time.LoadLocation(cfg.Team.Timezone)
	if err != nil {
		loc = time.UTC
	}
	llm, err := provider.Resolve(cfg)
	if err != nil {
		return err
	}
	var tracker assistant.Tracker
	var prober assistant.Prober
	if cfg.Linear.Enabled && cfg.Linear.APIKey != "" {
		client := linear.NewClient(cfg.Linear.APIKey, cfg.Linear.APIBase)
		tracker = client
		prober = client
	}

	out := &terminalMessenger{w: cmd.OutOrStdout()}
	asst := assistant.New(assistant.Deps{
		Store:    st,
		Writer:   st,
		Resolver: status.New(st, loc),
		// User IDs render as-is; only Slack can map them to names.
		Names: names.NewCache(func(ctx context.Context, userID string) (names.Profile, error) {
			return names.Profile{}, errors.New("name lookup needs slack")
		}),
		Tracker:     tracker,
		Prober:      prober,
		LLM:         llm,
		Messenger:   out,
		TeamSize:    cfg.Team.Size,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
	})

	return asst.HandleMention(cmd.Context(), assistant.MentionEvent{
		Text:      askMessage,
		UserID:    "terminal",
		ChannelID: "terminal",
		TS:        fmt.Sprintf("%d.000000", time.Now().Unix()),
	})
}

// terminalMessenger renders replies to stdout so the assistant can run
// without a Slack connection.
type terminalMessenger struct {
	w io.Writer
}

func (t *terminalMessenger) Say(ctx context.Context, channelID, threadTS, text string) error {
	fmt.Fprintln(t.w, text)
	return nil
}

func (t *terminalMessenger) SayBlocks(ctx context.Context, channelID, threadTS string, blocks []slack.Block) error {
	for _, block := range blocks {
		switch b := block.(type) {
		case *slack.HeaderBlock:
			if b.Text != nil {
				fmt.Fprintln(t.w, "== "+b.Text.Text+" ==")
			}
		case *slack.SectionBlock:
			if b.Text != nil {
				fmt.Fprintln(t.w, b.Text.Text)
			}
		case *slack.ContextBlock:
			for _, el := range b.ContextElements.Elements {
				if txt, ok := el.(*slack.TextBlockObject); ok {
					fmt.Fprintln(t.w, "  "+txt.Text)
				}
			}
		case *slack.DividerBlock:
			fmt.Fprintln(t.w, "---")
		}
	}
	return nil
}

func (t *terminalMessenger) ThreadReplies(ctx context.Context, channelID, threadTS string) ([]assistant.ThreadMessage, error) {
	slog.Debug("thread replies unavailable in terminal mode")
	return nil, nil
}
