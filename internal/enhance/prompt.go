package enhance

import "strings"

// Mode selects what the assistant does with the draft.
type Mode int

const (
	// ModeRewrite polishes the user's draft in place.
	ModeRewrite Mode = iota
	// ModeContinue extends the conversation without a draft.
	ModeContinue
)

// Turn is one prior message from the surrounding conversation.
type Turn struct {
	Author string
	Text   string
	Own    bool
}

// History supplies recent conversation turns, newest last.
type History interface {
	RecentTurns(limit int) []Turn
}

// Persona names the parties in the chat so prompt templates can refer
// to them. Description is free text about who the user is writing as;
// empty means no persona section in the instruction.
type Persona struct {
	User        string
	Character   string
	Description string
}

const rewriteInstruction = `You are a writing assistant embedded in a roleplay chat. Rewrite {{user}}'s draft message so it reads better: fix grammar and spelling, improve flow, and keep the original meaning, tone, and point of view. {{user}} is talking with {{char}}. Reply with the rewritten message only, no commentary.`

const continueInstruction = `You are a writing assistant embedded in a roleplay chat. Write {{user}}'s next message in the conversation with {{char}}, matching {{user}}'s established voice and the direction of the recent messages. Reply with the message text only, no commentary.`

const personaInstruction = ` {{user}} is writing as the following persona: {{persona}}`

func instructionFor(mode Mode, persona Persona) string {
	tmpl := rewriteInstruction
	if mode == ModeContinue {
		tmpl = continueInstruction
	}
	desc := strings.TrimSpace(persona.Description)
	if desc != "" {
		tmpl += personaInstruction
	}
	user := persona.User
	if user == "" {
		user = "the user"
	}
	char := persona.Character
	if char == "" {
		char = "their chat partner"
	}
	out := strings.ReplaceAll(tmpl, "{{user}}", user)
	out = strings.ReplaceAll(out, "{{char}}", char)
	return strings.ReplaceAll(out, "{{persona}}", desc)
}

// buildMessages assembles the wire messages for one enhance call. The
// history is clipped to the most recent contextLimit turns; zero means
// no history at all.
func buildMessages(mode Mode, persona Persona, history History, input string, contextLimit int) []Message {
	msgs := []Message{{Role: "system", Content: instructionFor(mode, persona)}}
	if history != nil && contextLimit > 0 {
		for _, turn := range history.RecentTurns(contextLimit) {
			role := "assistant"
			if turn.Own {
				role = "user"
			}
			msgs = append(msgs, Message{Role: role, Content: turn.Text})
		}
	}
	if mode != ModeContinue {
		msgs = append(msgs, Message{Role: "user", Content: input})
	}
	return msgs
}
