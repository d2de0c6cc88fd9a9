// Package cli defines the teampulse command tree.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/teampulse/teampulse/internal/cli.version=1.2.3"
	version = "0.4.1"
	logo    = "\n" +
		"  _____                    ____        _\n" +
		" |_   _|__  __ _ _ __ ___ |  _ \\ _   _| |___  ___\n" +
		"   | |/ _ \\/ _` | '_ ` _ \\| |_) | | | | / __|/ _ \\\n" +
		"   | |  __/ (_| | | | | | |  __/| |_| | \\__ \\  __/\n" +
		"   |_|\\___|\\__,_|_| |_| |_|_|    \\__,_|_|___/\\___|\n"
)

var rootCmd = &cobra.Command{
	Use:   "teampulse",
	Short: "TeamPulse - Slack standup assistant",
	Long:  color.CyanString(logo) + "\nA Slack-embedded assistant that answers questions about your team's standups, availability, and Linear tickets.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func printHeader(title string) {
	fmt.Println()
	color.Cyan(title)
	fmt.Println()
}
