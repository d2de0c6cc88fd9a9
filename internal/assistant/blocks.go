package assistant

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/teampulse/teampulse/internal/analytics"
	"github.com/teampulse/teampulse/internal/status"
)

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

func headerBlock(text string) *slack.HeaderBlock {
	return slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, text, true, false))
}

func contextLine(text string) *slack.ContextBlock {
	return slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, text, false, false))
}

// HelpBlocks is the static capability card for the help intent.
func HelpBlocks() []slack.Block {
	return []slack.Block{
		headerBlock("👋 TeamPulse"),
		markdownSection("I answer questions about the team's standups, availability, and Linear tickets."),
		slack.NewDividerBlock(),
		markdownSection(strings.Join([]string{
			"• *Where is @person?* / *is @person ooo?* — availability and day-off windows",
			"• *What is @person working on?* — today's standup plus recent Linear issues",
			"• *Stats for @person* / *tell me about @person* — performance profile",
			"• *Status of ABC-123* — ticket lookup by identifier",
			"• *Summarize* — today's standup thread rollup",
		}, "\n")),
		contextLine("Mention me with a question; I only answer from recorded standups."),
	}
}

// AvailabilityBlocks renders the structured availability reply: an optional
// synthesized summary, then one line per person with an emoji-coded status
// and any upcoming time off.
func AvailabilityBlocks(summary string, statuses []*status.Availability) []slack.Block {
	var blocks []slack.Block
	if summary != "" {
		blocks = append(blocks, markdownSection(summary), slack.NewDividerBlock())
	}
	for _, a := range statuses {
		blocks = append(blocks, markdownSection(fmt.Sprintf("%s %s", a.StatusEmoji, a.StatusLine)))
		if a.UpcomingLine != "" {
			blocks = append(blocks, contextLine(a.UpcomingLine))
		}
	}
	return blocks
}

// ProfileBlocks renders one person's performance profile.
func ProfileBlocks(p *Profile) []slack.Block {
	blocks := []slack.Block{headerBlock(p.DisplayName)}

	var scoreLines []string
	if m := p.WeeklyMetrics; m != nil {
		scoreLines = append(scoreLines, fmt.Sprintf(
			"*Week of %s:* score %.0f/100, consistency %.0f, %d/%d standups, percentile %.0f",
			m.PeriodStart, m.OverallScore, m.ConsistencyScore, m.Submissions, m.ExpectedSubmissions, m.Percentile))
		if m.RiskLevel != "" && m.RiskLevel != "low" {
			scoreLines = append(scoreLines, fmt.Sprintf("*Risk:* %s", m.RiskLevel))
		}
	}
	if m := p.MonthlyMetrics; m != nil {
		scoreLines = append(scoreLines, fmt.Sprintf(
			"*Month of %s:* score %.0f/100, velocity %.1f", m.PeriodStart, m.OverallScore, m.Velocity))
	}
	if len(scoreLines) == 0 {
		scoreLines = append(scoreLines, "No performance metrics recorded yet.")
	}
	blocks = append(blocks, markdownSection(strings.Join(scoreLines, "\n")))

	blocks = append(blocks, markdownSection(fmt.Sprintf(
		"*Streak:* %d day(s) • last 7 days: %d worked, %d off", p.Streak, p.WorkDays, p.OffDays)))

	if len(p.Achievements) > 0 {
		var lines []string
		for _, a := range p.Achievements {
			lines = append(lines, fmt.Sprintf("🏅 %s (level %d)", a.Title, a.Level))
		}
		blocks = append(blocks, markdownSection(strings.Join(lines, "\n")))
	}
	if len(p.Alerts) > 0 {
		var lines []string
		for _, a := range p.Alerts {
			lines = append(lines, fmt.Sprintf("⚠️ [%s] %s", a.Severity, a.Title))
		}
		blocks = append(blocks, slack.NewDividerBlock(), markdownSection(strings.Join(lines, "\n")))
	}
	return blocks
}

// ThreadSummaryBlocks renders a thread analytics rollup. displayName maps
// user IDs to names.
func ThreadSummaryBlocks(stats *analytics.ThreadStats, displayName func(string) string) []slack.Block {
	blocks := []slack.Block{
		headerBlock("📊 Standup summary"),
		markdownSection(fmt.Sprintf(
			"*Participation:* %d of %d (%d%%) • *Tasks:* %d • *Blockers:* %d",
			len(stats.Participants), stats.TeamSize, stats.CompletionRate,
			stats.TotalTasks, stats.BlockerCount)),
	}

	if len(stats.TopTopics) > 0 {
		var topics []string
		for _, topic := range stats.TopTopics {
			topics = append(topics, fmt.Sprintf("%s (%d)", topic.Word, topic.Count))
		}
		blocks = append(blocks, markdownSection("*Topics:* "+strings.Join(topics, ", ")))
	}

	b := stats.Buckets
	blocks = append(blocks, contextLine(fmt.Sprintf(
		"Response times — ≤1h: %d, 1–3h: %d, 3–8h: %d, >8h: %d",
		b.Within1h, b.Within3h, b.Within8h, b.Over8h)))

	if len(stats.Members) > 0 {
		blocks = append(blocks, slack.NewDividerBlock())
		var lines []string
		for _, m := range stats.Members {
			line := memberLine(m, displayName(m.UserID))
			lines = append(lines, line)
		}
		blocks = append(blocks, markdownSection(strings.Join(lines, "\n")))
	}
	return blocks
}

func memberLine(m analytics.MemberSummary, name string) string {
	switch {
	case m.DayOff:
		reason := m.DayOffReason
		if reason == "" {
			reason = "day off"
		}
		return fmt.Sprintf("🏖️ %s — %s", name, reason)
	case m.HasBlocker:
		return fmt.Sprintf("🚧 %s — %d task(s), blocked", name, m.TaskCount)
	case m.Replied:
		return fmt.Sprintf("✅ %s — %d task(s)", name, m.TaskCount)
	default:
		return fmt.Sprintf("⚪ %s — no reply yet", name)
	}
}
