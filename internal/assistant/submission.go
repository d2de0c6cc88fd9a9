package assistant

import (
	"regexp"
	"strings"

	"github.com/teampulse/teampulse/internal/store"
)

var (
	dayOffPattern     = regexp.MustCompile(`(?i)^\s*[*_]*\s*(?:day off|off today|ooo)\b`)
	timeWindowPattern = regexp.MustCompile(`(\d{1,2}:\d{2})\s*[-–]\s*(\d{1,2}:\d{2})`)
	sectionPattern    = regexp.MustCompile(`(?i)^\s*[*_]*(yesterday|today|blockers?|notes?)[*_]*\s*:\s*(.*)$`)
)

// ParseSubmission turns a free-text standup reply into entry sections.
// ok is false when the text carries nothing usable. A leading day-off
// shorthand ("off today[ HH:MM-HH:MM][: reason]") produces a day-off entry;
// otherwise lines are bucketed under the yesterday/today/blockers/notes
// headers, with unheadered leading text treated as today's work.
func ParseSubmission(text string) (*store.StandupEntry, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	if loc := dayOffPattern.FindStringIndex(trimmed); loc != nil {
		entry := &store.StandupEntry{IsDayOff: true}
		rest := trimmed[loc[1]:]
		if window := timeWindowPattern.FindStringSubmatch(rest); window != nil {
			entry.DayOffStart = normalizeClock(window[1])
			entry.DayOffEnd = normalizeClock(window[2])
			rest = strings.Replace(rest, window[0], "", 1)
		}
		rest = strings.Trim(rest, " \t:—-–")
		entry.DayOffReason = strings.TrimSpace(rest)
		return entry, true
	}

	entry := &store.StandupEntry{}
	section := "today"
	flush := func(section, line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		target := map[string]*string{
			"yesterday": &entry.Yesterday,
			"today":     &entry.Today,
			"blockers":  &entry.Blockers,
			"notes":     &entry.Notes,
		}[section]
		if *target != "" {
			*target += "\n"
		}
		*target += line
	}

	for _, line := range strings.Split(trimmed, "\n") {
		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			section = canonicalSection(m[1])
			rest := m[2]
			// "*Today:*" leaves the closing markup as the remainder.
			if strings.Trim(strings.TrimSpace(rest), "*_") == "" {
				rest = ""
			}
			flush(section, rest)
			continue
		}
		flush(section, line)
	}

	if entry.Yesterday == "" && entry.Today == "" && entry.Blockers == "" && entry.Notes == "" {
		return nil, false
	}
	return entry, true
}

func canonicalSection(header string) string {
	switch strings.ToLower(header) {
	case "yesterday":
		return "yesterday"
	case "blocker", "blockers":
		return "blockers"
	case "note", "notes":
		return "notes"
	default:
		return "today"
	}
}

// normalizeClock zero-pads single-digit hours so stored windows compare
// and render consistently.
func normalizeClock(clock string) string {
	if len(clock) == 4 { // "9:30"
		return "0" + clock
	}
	return clock
}
