// Package config provides configuration types and loading for teampulse.
package config

// Config is the root configuration struct.
// Top-level groups: Paths, Slack, Linear, Model, Team.
type Config struct {
	Paths  PathsConfig  `json:"paths"`
	Slack  SlackConfig  `json:"slack"`
	Linear LinearConfig `json:"linear"`
	Model  ModelConfig  `json:"model"`
	Team   TeamConfig   `json:"team"`
}

// ---------------------------------------------------------------------------
// Paths – filesystem locations
// ---------------------------------------------------------------------------

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	Database string `json:"database" envconfig:"DATABASE"`
}

// ---------------------------------------------------------------------------
// Slack – event transport
// ---------------------------------------------------------------------------

// SlackConfig configures the Slack socket-mode connection.
type SlackConfig struct {
	Enabled        bool   `json:"enabled" envconfig:"SLACK_ENABLED"`
	BotToken       string `json:"botToken" envconfig:"SLACK_BOT_TOKEN"`
	AppToken       string `json:"appToken" envconfig:"SLACK_APP_TOKEN"`
	BotUserID      string `json:"botUserId" envconfig:"SLACK_BOT_USER_ID"`
	StandupChannel string `json:"standupChannel" envconfig:"SLACK_STANDUP_CHANNEL"`
}

// ---------------------------------------------------------------------------
// Linear – issue tracker integration
// ---------------------------------------------------------------------------

// LinearConfig configures the Linear issue-tracker client.
// The integration is optional; with Enabled false every Linear-backed
// enrichment contributes nothing.
type LinearConfig struct {
	Enabled bool   `json:"enabled" envconfig:"LINEAR_ENABLED"`
	APIKey  string `json:"apiKey" envconfig:"LINEAR_API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"LINEAR_API_BASE"`
}

// ---------------------------------------------------------------------------
// Model – LLM behaviour
// ---------------------------------------------------------------------------

// ModelConfig groups LLM model settings. The model is an enhancement layer:
// with an empty APIKey the synthesizer falls back to deterministic text.
type ModelConfig struct {
	Name        string  `json:"name" envconfig:"MODEL"`
	APIKey      string  `json:"apiKey" envconfig:"MODEL_API_KEY"`
	APIBase     string  `json:"apiBase,omitempty" envconfig:"MODEL_API_BASE"`
	MaxTokens   int     `json:"maxTokens" envconfig:"MODEL_MAX_TOKENS"`
	Temperature float64 `json:"temperature" envconfig:"MODEL_TEMPERATURE"`
}

// ---------------------------------------------------------------------------
// Team – roster and calendar settings
// ---------------------------------------------------------------------------

// TeamConfig groups team roster and calendar settings.
type TeamConfig struct {
	// Size is the fixed denominator for standup completion rates.
	Size int `json:"size" envconfig:"TEAM_SIZE"`
	// Timezone is the reference zone for past/today/future classification.
	Timezone string `json:"timezone" envconfig:"TEAM_TIMEZONE"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Database: "~/.teampulse/teampulse.db",
		},
		Model: ModelConfig{
			Name:        "gpt-4o-mini",
			MaxTokens:   500,
			Temperature: 0.2,
		},
		Team: TeamConfig{
			Size:     18,
			Timezone: "UTC",
		},
	}
}
