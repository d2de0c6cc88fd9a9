package intent

import (
	"reflect"
	"testing"
)

const botID = "UBOT"

func TestHelpWinsOverEverything(t *testing.T) {
	q := Parse("help me figure out where <@U1> is", botID)
	if !q.Intents.Help {
		t.Fatalf("expected help intent")
	}
	if q.Intents.Availability || len(q.Mentions) != 0 {
		t.Errorf("help must be exclusive, got %+v", q)
	}
}

func TestThreadSummaryIsExclusive(t *testing.T) {
	q := Parse("can you summarize today's standup for ABC-123", botID)
	if !q.Intents.ThreadSummary {
		t.Fatalf("expected thread-summary intent")
	}
	if q.Intents.TicketStatus || len(q.Tickets) != 0 {
		t.Errorf("thread summary must win over ticket extraction, got %+v", q)
	}
}

func TestTrackerTestTrigger(t *testing.T) {
	q := Parse("run a linear test please", botID)
	if !q.Intents.TrackerTest {
		t.Fatalf("expected tracker-test intent, got %+v", q)
	}
}

func TestKeywordDerivation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intents
	}{
		{"availability", "where is <@U1> today?", Intents{Availability: true}},
		{"ooo", "is <@U1> ooo?", Intents{Availability: true}},
		{"work", "what is <@U1> working on", Intents{WorkSummary: true}},
		{"performance", "show me stats for <@U1>", Intents{Performance: true}},
		{"full profile", "tell me everything about <@U1>", Intents{
			FullProfile: true, Availability: true, WorkSummary: true, Performance: true,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.text, botID)
			if q.Intents != tt.want {
				t.Errorf("intents = %+v, want %+v", q.Intents, tt.want)
			}
			if q.NeedsClarification {
				t.Errorf("unexpected clarification for %q", tt.text)
			}
		})
	}
}

func TestMentionExtractionExcludesBotAndDedupes(t *testing.T) {
	q := Parse("<@UBOT> where are <@U1> and <@U2> and <@U1>?", botID)
	want := []string{"U1", "U2"}
	if !reflect.DeepEqual(q.Mentions, want) {
		t.Errorf("mentions = %v, want %v", q.Mentions, want)
	}
}

func TestTicketExtraction(t *testing.T) {
	q := Parse("status of ABC-123 and also INFRA2-9 and ABC-123 again", botID)
	want := []string{"ABC-123", "INFRA2-9"}
	if !reflect.DeepEqual(q.Tickets, want) {
		t.Errorf("tickets = %v, want %v", q.Tickets, want)
	}
	if !q.Intents.TicketStatus {
		t.Errorf("expected ticket-status intent")
	}
}

func TestTicketOnlyQueryNeedsNoMention(t *testing.T) {
	q := Parse("what's the status of ABC-123?", botID)
	if q.NeedsClarification {
		t.Fatalf("ticket lookups must not demand a mentioned person: %+v", q)
	}
	if !q.Intents.TicketStatus {
		t.Fatalf("expected ticket-status intent")
	}
}

func TestClarificationShortCircuit(t *testing.T) {
	// Availability keyword, nobody mentioned: never guess a default person.
	q := Parse("is anyone on vacation", botID)
	if !q.NeedsClarification {
		t.Fatalf("expected clarification, got %+v", q)
	}
}

func TestDefaultIntentsForBareMention(t *testing.T) {
	q := Parse("<@U1>?", botID)
	want := Intents{Availability: true, WorkSummary: true}
	if q.Intents != want {
		t.Errorf("intents = %+v, want %+v", q.Intents, want)
	}
}

func TestGeneralSearchFallthrough(t *testing.T) {
	q := Parse("how is the team holding up", botID)
	if !q.GeneralSearch || !q.TeamWide {
		t.Errorf("expected team-wide general search, got %+v", q)
	}

	q = Parse("good morning!", botID)
	if !q.GeneralSearch || q.TeamWide {
		t.Errorf("expected plain general search, got %+v", q)
	}
}

func TestWordBoundaries(t *testing.T) {
	q := Parse("the whole pipeline is fine", botID)
	if q.TeamWide {
		t.Errorf("'who' must not match inside 'whole'")
	}
}
