package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/linear"
	"github.com/teampulse/teampulse/internal/store"
)

type doctorStatus int

const (
	doctorPass doctorStatus = iota
	doctorWarn
	doctorFail
)

type doctorCheck struct {
	name    string
	status  doctorStatus
	message string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run config and connectivity diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		checks := runDoctor(ctx)
		failures := 0
		for _, check := range checks {
			symbol := "PASS"
			switch check.status {
			case doctorWarn:
				symbol = "WARN"
			case doctorFail:
				symbol = "FAIL"
				failures++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", symbol, check.name, check.message)
		}
		if failures > 0 {
			return fmt.Errorf("doctor found %d failing check(s)", failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(ctx context.Context) []doctorCheck {
	var checks []doctorCheck

	path, err := config.ConfigPath()
	if err != nil {
		checks = append(checks, doctorCheck{"config", doctorFail, err.Error()})
		return checks
	}
	if _, err := os.Stat(path); err != nil {
		checks = append(checks, doctorCheck{"config", doctorWarn, "no config file at " + path + " (env-only setup)"})
	} else {
		checks = append(checks, doctorCheck{"config", doctorPass, path})
	}

	cfg, err := config.Load()
	if err != nil {
		checks = append(checks, doctorCheck{"config parse", doctorFail, err.Error()})
		return checks
	}

	if st, err := store.New(cfg.Paths.Database); err != nil {
		checks = append(checks, doctorCheck{"database", doctorFail, err.Error()})
	} else {
		st.Close()
		checks = append(checks, doctorCheck{"database", doctorPass, cfg.Paths.Database})
	}

	checks = append(checks, doctorSlack(ctx, cfg))
	checks = append(checks, doctorLinear(ctx, cfg))

	if cfg.Model.APIKey == "" {
		checks = append(checks, doctorCheck{"model", doctorWarn, "no API key; replies will be deterministic"})
	} else {
		checks = append(checks, doctorCheck{"model", doctorPass, cfg.Model.Name})
	}

	if cfg.Team.Size <= 0 {
		checks = append(checks, doctorCheck{"team", doctorFail, "team.size must be positive"})
	} else if _, err := time.LoadLocation(cfg.Team.Timezone); err != nil {
		checks = append(checks, doctorCheck{"team", doctorFail, "invalid timezone " + cfg.Team.Timezone})
	} else {
		checks = append(checks, doctorCheck{"team", doctorPass,
			fmt.Sprintf("%d members, %s", cfg.Team.Size, cfg.Team.Timezone)})
	}
	return checks
}

func doctorSlack(ctx context.Context, cfg *config.Config) doctorCheck {
	if !cfg.Slack.Enabled {
		return doctorCheck{"slack", doctorWarn, "disabled"}
	}
	if cfg.Slack.BotToken == "" || cfg.Slack.AppToken == "" {
		return doctorCheck{"slack", doctorFail, "enabled but bot or app token is missing"}
	}
	api := slack.New(cfg.Slack.BotToken)
	auth, err := api.AuthTestContext(ctx)
	if err != nil {
		return doctorCheck{"slack", doctorFail, "auth test failed: " + err.Error()}
	}
	return doctorCheck{"slack", doctorPass, fmt.Sprintf("authenticated as %s in %s", auth.User, auth.Team)}
}

func doctorLinear(ctx context.Context, cfg *config.Config) doctorCheck {
	if !cfg.Linear.Enabled || cfg.Linear.APIKey == "" {
		return doctorCheck{"linear", doctorWarn, "disabled"}
	}
	account, err := linear.NewClient(cfg.Linear.APIKey, cfg.Linear.APIBase).Probe(ctx)
	if err != nil {
		return doctorCheck{"linear", doctorFail, "probe failed: " + err.Error()}
	}
	return doctorCheck{"linear", doctorPass, "authenticated as " + account}
}
