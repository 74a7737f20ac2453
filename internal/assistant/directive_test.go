package assistant

import "testing"

func TestExtractActionTag(t *testing.T) {
	reply := `Sure, I can set that up for you. <action>{"type":"PROPOSE_CREATE_PROJECT","data":{"name":"Website Revamp","clientId":"c1","budget":5000},"summary":"Create Project: Website Revamp"}</action> Let me know if the budget looks right.`

	directive := Extract(reply)
	if directive == nil {
		t.Fatal("expected directive")
	}
	if directive.Kind != "PROPOSE_CREATE_PROJECT" {
		t.Fatalf("unexpected kind: %s", directive.Kind)
	}
	if directive.Data["name"] != "Website Revamp" {
		t.Fatalf("unexpected data: %v", directive.Data)
	}
	if directive.Summary != "Create Project: Website Revamp" {
		t.Fatalf("unexpected summary: %s", directive.Summary)
	}
	if directive.IsSilent() {
		t.Fatal("proposal must not be silent")
	}
}

func TestExtractFencedJSONMatchesUnfenced(t *testing.T) {
	unfenced := `<action>{"type":"READ_CLIENT","data":{"id":"c1"}}</action>`
	fenced := "<action>\n```json\n{\"type\":\"READ_CLIENT\",\"data\":{\"id\":\"c1\"}}\n```\n</action>"

	a := Extract(unfenced)
	b := Extract(fenced)
	if a == nil || b == nil {
		t.Fatal("expected directives from both forms")
	}
	if a.Kind != b.Kind || a.Data["id"] != b.Data["id"] {
		t.Fatalf("fenced and unfenced disagree: %v vs %v", a, b)
	}
}

func TestExtractNoTags(t *testing.T) {
	if directive := Extract("Happy to help! What would you like to do today?"); directive != nil {
		t.Fatalf("expected no directive, got %v", directive)
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	if directive := Extract(`<action>{"type": "CREATE_CLIENT", "data": {broken}</action>`); directive != nil {
		t.Fatalf("malformed JSON must yield no directive, got %v", directive)
	}
}

func TestExtractMissingType(t *testing.T) {
	if directive := Extract(`<action>{"data":{"id":"c1"}}</action>`); directive != nil {
		t.Fatalf("directive without type must be ignored, got %v", directive)
	}
}

func TestExtractToolCallFallback(t *testing.T) {
	reply := `<tool_call>READ_INVOICE {"id": "inv-7"}</tool_call>`

	directive := Extract(reply)
	if directive == nil {
		t.Fatal("expected directive from tool call format")
	}
	if directive.Kind != ActionReadInvoice {
		t.Fatalf("unexpected kind: %s", directive.Kind)
	}
	if directive.Data["id"] != "inv-7" {
		t.Fatalf("whole trailing object must become data: %v", directive.Data)
	}
	if !directive.IsSilent() {
		t.Fatal("read directive must be silent")
	}
}

func TestExtractFirstBlockWins(t *testing.T) {
	reply := `<action>{"type":"READ_PROJECT","data":{"id":"p1"}}</action> and later <action>{"type":"PROPOSE_DELETE_PROJECT","data":{"id":"p1"}}</action>`

	directive := Extract(reply)
	if directive == nil {
		t.Fatal("expected directive")
	}
	if directive.Kind != ActionReadProject {
		t.Fatalf("first block must win, got %s", directive.Kind)
	}
}

func TestReadProjectDirectiveIsSilent(t *testing.T) {
	directive := Extract(`<action>{"type":"READ_PROJECT","data":{"id":"p1"}}</action>`)
	if directive == nil {
		t.Fatal("expected directive")
	}
	if StripProposalMarker(directive.Kind) != ActionReadProject {
		t.Fatalf("unexpected stripped kind: %s", directive.Kind)
	}
	if !directive.IsSilent() {
		t.Fatal("READ_PROJECT must be silent")
	}
}

func TestUnknownReadSpellingIsNotSilent(t *testing.T) {
	directive := &Directive{Kind: "READ_EVERYTHING", Data: map[string]any{}}
	if directive.IsSilent() {
		t.Fatal("kinds outside the enumeration must never be silent")
	}
}
