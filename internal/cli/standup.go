package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/slackbridge"
	"github.com/teampulse/teampulse/internal/store"
)

var standupCmd = &cobra.Command{
	Use:   "standup",
	Short: "Manage the daily standup thread",
}

// standupOpenCmd is a one-shot meant to be driven by an external
// scheduler (cron, systemd timer). It is idempotent per day.
var standupOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open today's standup thread in the configured channel",
	RunE:  runStandupOpen,
}

func init() {
	standupCmd.AddCommand(standupOpenCmd)
	rootCmd.AddCommand(standupCmd)
}

func runStandupOpen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Slack.Enabled {
		return errors.New("slack is disabled")
	}
	if cfg.Slack.StandupChannel == "" {
		return errors.New("no standup channel configured (slack.standupChannel)")
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
	today := time.Now().In(loc).Format(store.DateFormat)
	if _, ok, err := st.ThreadForDate(today); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Standup thread for %s already open.\n", today)
		return nil
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

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := bridge.OpenStandupThread(ctx, today); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Standup thread opened for %s.\n", today)
	return nil
}
