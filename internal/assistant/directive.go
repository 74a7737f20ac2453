package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Directive is one structured action request recovered from free-form model
// text.
type Directive struct {
	Kind    ActionKind
	Data    map[string]any
	Summary string
}

// IsSilent reports whether the directive may execute without user
// confirmation: exactly the read kinds.
func (d *Directive) IsSilent() bool {
	if d == nil {
		return false
	}
	return silentKind(d.Kind)
}

var (
	actionTagPattern = regexp.MustCompile(`(?s)<action>\s*(.*?)\s*</action>`)
	toolCallPattern  = regexp.MustCompile(`(?s)<tool_call>\s*([A-Za-z_]+)\s*(\{.*?\})\s*</tool_call>`)
	codeFencePattern = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
)

// parsers are tried in order; each is a pure string -> directive function that
// returns nil instead of failing on malformed input.
var parsers = []func(string) *Directive{parseActionTag, parseToolCall}

// Extract recovers at most one directive from a model reply. The first tagged
// block wins. No tag pair, or unparseable JSON inside one, yields nil; a
// malformed directive is the same as no directive.
func Extract(reply string) *Directive {
	for _, parse := range parsers {
		if directive := parse(reply); directive != nil {
			return directive
		}
	}
	return nil
}

type taggedAction struct {
	Type    string         `json:"type"`
	Data    map[string]any `json:"data"`
	Summary string         `json:"summary,omitempty"`
}

// parseActionTag handles the primary <action>{...}</action> format. Models
// often wrap the JSON in markdown code fences inside the tags; those are
// stripped before parsing.
func parseActionTag(reply string) *Directive {
	match := actionTagPattern.FindStringSubmatch(reply)
	if len(match) < 2 {
		return nil
	}
	body := stripCodeFences(match[1])

	var decoded taggedAction
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil
	}
	kind := ActionKind(strings.TrimSpace(decoded.Type))
	if kind == "" {
		return nil
	}
	data := decoded.Data
	if data == nil {
		data = map[string]any{}
	}
	return &Directive{
		Kind:    kind,
		Data:    data,
		Summary: strings.TrimSpace(decoded.Summary),
	}
}

// parseToolCall handles the native tool-call convention some models emit
// instead of the action tag: a bare function name followed by the argument
// object. The whole object is the payload; there is no data wrapper.
func parseToolCall(reply string) *Directive {
	match := toolCallPattern.FindStringSubmatch(reply)
	if len(match) < 3 {
		return nil
	}
	data := map[string]any{}
	if err := json.Unmarshal([]byte(match[2]), &data); err != nil {
		return nil
	}
	kind := ActionKind(strings.TrimSpace(match[1]))
	if kind == "" {
		return nil
	}
	return &Directive{Kind: kind, Data: data}
}

func stripCodeFences(body string) string {
	cleaned := codeFencePattern.ReplaceAllString(body, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
