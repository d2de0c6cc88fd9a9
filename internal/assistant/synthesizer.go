package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/teampulse/teampulse/internal/provider"
)

// NoInformationReply is returned when the aggregator produced no context.
const NoInformationReply = "I don't have any information about that yet."

const groundingSystemPrompt = `You are a team standup assistant. Answer the question using ONLY the facts provided in the context. Do not invent names, dates, tickets, or statuses. Keep the answer to a few sentences. If the context does not contain the answer, say "I don't know".`

// uncertainPhrases mark a model answer as a non-answer; when any appears
// the raw grounded context is returned instead, so the user never gets
// "I don't know" while facts were available.
var uncertainPhrases = []string{
	"i don't know",
	"i do not know",
	"no information",
	"i'm not sure",
	"cannot determine",
	"don't have enough",
}

// Synthesizer turns aggregated context plus the original question into a
// reply. The model is an enhancement layer, never a dependency for
// correctness: with no provider configured the joined context is the reply.
type Synthesizer struct {
	llm         provider.LLMProvider // nil when not configured
	maxTokens   int
	temperature float64
}

// NewSynthesizer creates a Synthesizer. llm may be nil.
func NewSynthesizer(llm provider.LLMProvider, maxTokens int, temperature float64) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Synthesizer{llm: llm, maxTokens: maxTokens, temperature: temperature}
}

// Respond produces the reply text. fromModel reports whether the text is a
// confident model answer rather than joined context or the fixed
// no-information message.
func (s *Synthesizer) Respond(ctx context.Context, question string, contextStrings []string) (text string, fromModel bool) {
	if len(contextStrings) == 0 {
		return NoInformationReply, false
	}
	joined := strings.Join(contextStrings, "\n\n")
	if s.llm == nil {
		return joined, false
	}

	prompt := "Context:\n" + joined + "\n\nQuestion: " + question
	resp, err := s.llm.Chat(ctx, &provider.ChatRequest{
		Messages: []provider.Message{
			{Role: "system", Content: groundingSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		slog.Error("completion failed, falling back to grounded context", "error", err)
		return joined, false
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" || isUncertain(answer) {
		return joined, false
	}
	return answer, true
}

func isUncertain(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range uncertainPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
