package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ TeamPulse Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 TeamPulse Status")
		fmt.Printf("Version: %s\n", version)

		path, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				fmt.Println("Config:   ✓ Found (" + path + ")")
			} else {
				fmt.Println("Config:   ✗ Not found (" + path + ", env-only setup)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config load error: %v\n", err)
			return
		}
		fmt.Println("Database: " + cfg.Paths.Database)
		fmt.Println("Slack:    " + enabledMark(cfg.Slack.Enabled && cfg.Slack.BotToken != ""))
		fmt.Println("Linear:   " + enabledMark(cfg.Linear.Enabled && cfg.Linear.APIKey != ""))
		fmt.Println("Model:    " + enabledMark(cfg.Model.APIKey != ""))
		fmt.Printf("Team:     %d members, %s\n", cfg.Team.Size, cfg.Team.Timezone)
	},
}

func enabledMark(on bool) string {
	if on {
		return "✓ Configured"
	}
	return "✗ Not configured"
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
}
