package assistant

import "testing"

func TestParseSubmissionSections(t *testing.T) {
	entry, ok := ParseSubmission("Yesterday: shipped the webhook fix\nToday: payment retries\nBlockers: none\nNotes: out early Friday")
	if !ok {
		t.Fatal("expected a parsed entry")
	}
	if entry.Yesterday != "shipped the webhook fix" {
		t.Errorf("yesterday = %q", entry.Yesterday)
	}
	if entry.Today != "payment retries" {
		t.Errorf("today = %q", entry.Today)
	}
	if entry.Blockers != "none" {
		t.Errorf("blockers = %q", entry.Blockers)
	}
	if entry.Notes != "out early Friday" {
		t.Errorf("notes = %q", entry.Notes)
	}
	if entry.IsDayOff {
		t.Error("sectioned submission should not be a day off")
	}
}

func TestParseSubmissionBoldHeadersAndContinuations(t *testing.T) {
	entry, ok := ParseSubmission("*Today:*\n- fix login\n- review PRs\n*Blockers:* waiting on infra")
	if !ok {
		t.Fatal("expected a parsed entry")
	}
	if entry.Today != "- fix login\n- review PRs" {
		t.Errorf("today = %q", entry.Today)
	}
	if entry.Blockers != "waiting on infra" {
		t.Errorf("blockers = %q", entry.Blockers)
	}
}

func TestParseSubmissionUnheaderedTextIsToday(t *testing.T) {
	entry, ok := ParseSubmission("working on the search index rebuild")
	if !ok {
		t.Fatal("expected a parsed entry")
	}
	if entry.Today != "working on the search index rebuild" {
		t.Errorf("today = %q", entry.Today)
	}
}

func TestParseSubmissionDayOff(t *testing.T) {
	entry, ok := ParseSubmission("off today: dentist appointment")
	if !ok {
		t.Fatal("expected a parsed entry")
	}
	if !entry.IsDayOff {
		t.Fatal("expected a day-off entry")
	}
	if entry.DayOffReason != "dentist appointment" {
		t.Errorf("reason = %q", entry.DayOffReason)
	}
	if entry.DayOffStart != "" || entry.DayOffEnd != "" {
		t.Errorf("plain day off should have no window, got %q-%q", entry.DayOffStart, entry.DayOffEnd)
	}
}

func TestParseSubmissionDayOffWindow(t *testing.T) {
	entry, ok := ParseSubmission("Day off 9:00-13:30: doctor")
	if !ok {
		t.Fatal("expected a parsed entry")
	}
	if !entry.IsDayOff {
		t.Fatal("expected a day-off entry")
	}
	if entry.DayOffStart != "09:00" || entry.DayOffEnd != "13:30" {
		t.Errorf("window = %q-%q, want 09:00-13:30", entry.DayOffStart, entry.DayOffEnd)
	}
	if entry.DayOffReason != "doctor" {
		t.Errorf("reason = %q", entry.DayOffReason)
	}
}

func TestParseSubmissionEmpty(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		if _, ok := ParseSubmission(text); ok {
			t.Errorf("ParseSubmission(%q) should not parse", text)
		}
	}
}
