package usecase

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// historyTokenBudget bounds how much persisted history gets replayed to
// the provider on each turn. Oldest turns are dropped first.
const historyTokenBudget = 3000

const tutorPersona = `You are a friendly and patient English language tutor. ` +
	`Help the learner practice conversation, gently correct their mistakes, ` +
	`and keep the dialogue going with follow-up questions. Adapt your ` +
	`vocabulary to the learner's level.`

const voiceTutorPersona = tutorPersona + ` The learner is speaking to you by ` +
	`voice. Use short sentences and contractions, acknowledge what you heard ` +
	`verbally, and avoid lists, markdown, or anything that reads poorly aloud.`

// promptBuilder assembles the provider message array for each turn:
// one system persona, then the token-trimmed history in original order,
// then the current user message.
type promptBuilder struct {
	scenario string // session scenario prompt; empty falls back to the persona alone
	encoder  *tiktoken.Tiktoken
}

func newPromptBuilder(scenario string) *promptBuilder {
	// cl100k_base covers the chat model family we target; on failure the
	// builder falls back to a bytes/4 estimate.
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &promptBuilder{scenario: scenario, encoder: enc}
}

// build produces the full message array for one turn.
func (p *promptBuilder) build(history []*entity.ChatMessage, userMessage string, isVoiceInput bool) []entity.PromptMessage {
	system := p.systemPrompt(isVoiceInput)

	trimmed := p.trimHistory(history)

	messages := make([]entity.PromptMessage, 0, len(trimmed)+2)
	messages = append(messages, entity.PromptMessage{Role: entity.RoleSystem, Content: system})
	for _, m := range trimmed {
		messages = append(messages, entity.PromptMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, entity.PromptMessage{Role: entity.RoleUser, Content: userMessage})

	return messages
}

func (p *promptBuilder) systemPrompt(isVoiceInput bool) string {
	persona := tutorPersona
	if isVoiceInput {
		persona = voiceTutorPersona
	}
	if p.scenario == "" {
		return persona
	}
	return persona + "\n\nScenario: " + p.scenario
}

// trimHistory keeps the most recent turns that fit the token budget,
// preserving their original order.
func (p *promptBuilder) trimHistory(history []*entity.ChatMessage) []*entity.ChatMessage {
	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		t := p.countTokens(history[i].Content)
		if used+t > historyTokenBudget {
			break
		}
		used += t
		start = i
	}
	return history[start:]
}

func (p *promptBuilder) countTokens(s string) int {
	if p.encoder == nil {
		return len(s) / 4
	}
	return len(p.encoder.Encode(s, nil, nil))
}
