package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/assistant"
	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/linear"
	"github.com/teampulse/teampulse/internal/names"
	"github.com/teampulse/teampulse/internal/provider"
	"github.com/teampulse/teampulse/internal/slackbridge"
	"github.com/teampulse/teampulse/internal/status"
	"github.com/teampulse/teampulse/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Slack and serve the assistant",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	printHeader("🚀 TeamPulse")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Slack.Enabled {
		return errors.New("slack is disabled; set slack.enabled in the config or TEAMPULSE_SLACK_ENABLED=true")
	}

	st, err := store.New(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	loc, err := time.LoadLocation(cfg.Team.Timezone)
	if err != nil {
		slog.Warn("invalid team timezone, using UTC", "timezone", cfg.Team.Timezone, "error", err)
		loc = time.UTC
	}

	llm, err := provider.Resolve(cfg)
	if err != nil {
		return err
	}
	if llm == nil {
		slog.Info("no model API key configured, replies will be deterministic")
	}

	var tracker assistant.Tracker
	var prober assistant.Prober
	if cfg.Linear.Enabled && cfg.Linear.APIKey != "" {
		client := linear.NewClient(cfg.Linear.APIKey, cfg.Linear.APIBase)
		tracker = client
		prober = client
	} else {
		slog.Info("linear integration disabled")
	}

	bridge, err := slackbridge.New(slackbridge.Options{
		BotToken:       cfg.Slack.BotToken,
		AppToken:       cfg.Slack.AppToken,
		BotUserID:      cfg.Slack.BotUserID,
		StandupChannel: cfg.Slack.StandupChannel,
		Threads:        st,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bridge.Authenticate(ctx); err != nil {
		return err
	}

	resolver := status.New(st, loc)
	bridge.SetHandler(assistant.New(assistant.Deps{
		Store:       st,
		Writer:      st,
		Resolver:    resolver,
		Names:       names.NewCache(bridge.ResolveProfile),
		Tracker:     tracker,
		Prober:      prober,
		LLM:         llm,
		Messenger:   bridge,
		BotUserID:   bridge.BotUserID(),
		TeamSize:    cfg.Team.Size,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
	}))

	slog.Info("teampulse running", "team_size", cfg.Team.Size, "timezone", loc.String())
	return bridge.Run(ctx)
}
