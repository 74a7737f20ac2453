package assistant

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultPersona frames the assistant when no persona file is configured.
const DefaultPersona = "You are the business assistant for FreeTrack, a freelance business tracker. " +
	"You help the user manage clients, projects, invoices, payments and expenses. " +
	"Always be polite and professional. If you are not sure which client or project the user means, " +
	"ask for clarification using the lists provided."

// Turn is one prior message in the dialogue. History is caller-supplied each
// request and treated as immutable.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// buildPrompt composes the full model prompt: persona, current date, context
// snapshot, directive grammar and behavior rules, then the transcript and the
// new message.
func buildPrompt(persona, today string, snapshot Snapshot, history []Turn, message string) string {
	contextJSON, err := json.Marshal(snapshot)
	if err != nil {
		contextJSON = []byte("{}")
	}

	builder := strings.Builder{}
	builder.WriteString(strings.TrimSpace(persona))
	builder.WriteString("\n\nCURRENT DATE: ")
	builder.WriteString(today)
	builder.WriteString("\n\nCURRENT BUSINESS DATA:\n")
	builder.Write(contextJSON)
	builder.WriteString("\n\n")
	builder.WriteString(directiveRules())
	builder.WriteString("\n\n")
	for _, turn := range history {
		role := "User"
		if strings.EqualFold(strings.TrimSpace(turn.Role), "assistant") {
			role = "Assistant"
		}
		builder.WriteString(fmt.Sprintf("%s: %s\n", role, strings.TrimSpace(turn.Text)))
	}
	builder.WriteString("User: ")
	builder.WriteString(strings.TrimSpace(message))
	builder.WriteString("\nAssistant:")
	return builder.String()
}

func directiveRules() string {
	kinds := make([]string, 0, len(requiredFields))
	for kind := range requiredFields {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	builder := strings.Builder{}
	builder.WriteString("RULES:\n")
	builder.WriteString("- To propose a create, update or delete, wrap exactly one JSON object in <action></action> tags: ")
	builder.WriteString(`{"type": "PROPOSE_<KIND>", "data": {...}, "summary": "short human description"}. `)
	builder.WriteString("The user confirms it before anything runs.\n")
	builder.WriteString("- To look up a record you need before answering, emit a READ action the same way, without the PROPOSE_ prefix: ")
	builder.WriteString(`{"type": "READ_INVOICE", "data": {"id": "..."}}. `)
	builder.WriteString("It runs immediately and the result comes back as an OBSERVATION line; never mention these lookups to the user.\n")
	builder.WriteString("- Use ids from CURRENT BUSINESS DATA, never invent them. Use plain JSON inside the tags, no markdown fences.\n")
	builder.WriteString("- Supported kinds and their required data fields:\n")
	for _, kind := range kinds {
		builder.WriteString(fmt.Sprintf("  %s: %s\n", kind, strings.Join(requiredFields[ActionKind(kind)], ", ")))
	}
	return builder.String()
}
