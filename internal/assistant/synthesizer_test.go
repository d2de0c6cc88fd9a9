package assistant

import (
	"context"
	"errors"
	"testing"
)

func TestRespondNoContext(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{reply: "anything"}, 0, 0)
	text, fromModel := s.Respond(context.Background(), "where is alice?", nil)
	if text != NoInformationReply {
		t.Errorf("text = %q, want the fixed no-information reply", text)
	}
	if fromModel {
		t.Error("fromModel should be false with no context")
	}
}

func TestRespondWithoutProviderJoinsContext(t *testing.T) {
	s := NewSynthesizer(nil, 0, 0)
	text, fromModel := s.Respond(context.Background(), "q", []string{"fact one", "fact two"})
	if text != "fact one\n\nfact two" {
		t.Errorf("text = %q", text)
	}
	if fromModel {
		t.Error("fromModel should be false without a provider")
	}
}

func TestRespondConfidentAnswer(t *testing.T) {
	llm := &fakeLLM{reply: "Alice is working today on payment retries."}
	s := NewSynthesizer(llm, 0, 0)
	text, fromModel := s.Respond(context.Background(), "q", []string{"Alice is working today."})
	if !fromModel {
		t.Fatal("fromModel should be true for a confident answer")
	}
	if text != llm.reply {
		t.Errorf("text = %q", text)
	}
	if llm.calls != 1 {
		t.Errorf("llm called %d times, want 1", llm.calls)
	}
}

func TestRespondUncertainAnswerFallsBack(t *testing.T) {
	for _, reply := range []string{"I don't know.", "There is no information about that.", ""} {
		s := NewSynthesizer(&fakeLLM{reply: reply}, 0, 0)
		text, fromModel := s.Respond(context.Background(), "q", []string{"grounded fact"})
		if fromModel {
			t.Errorf("reply %q: fromModel should be false", reply)
		}
		if text != "grounded fact" {
			t.Errorf("reply %q: text = %q, want the grounded context", reply, text)
		}
	}
}

func TestRespondProviderErrorFallsBack(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{err: errors.New("timeout")}, 0, 0)
	text, fromModel := s.Respond(context.Background(), "q", []string{"grounded fact"})
	if fromModel || text != "grounded fact" {
		t.Errorf("got (%q, %v), want grounded fallback", text, fromModel)
	}
}
