package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fikir/freetrack/internal/llm"
	"github.com/fikir/freetrack/internal/store"
)

// Persona supplies the role framing for the prompt. Implementations may swap
// the text at runtime (see internal/persona).
type Persona interface {
	Text() string
}

type staticPersona string

func (p staticPersona) Text() string { return string(p) }

type ChatConfig struct {
	MaxLoopSteps int           // model calls allowed per Process invocation
	RecentLimit  int           // payments/expenses kept in the snapshot
	CallTimeout  time.Duration // per model call
}

// Chat drives the bounded conversation loop: build context, call the model,
// silently execute read directives it issues, feed the observations back, and
// stop at a user-facing reply or the loop limit. Each Process call is
// independent; there is no shared mutable state between invocations.
type Chat struct {
	logger     *slog.Logger
	llm        llm.Responder
	store      *store.Store
	dispatcher *Dispatcher
	persona    Persona
	cfg        ChatConfig
}

func NewChat(logger *slog.Logger, responder llm.Responder, st *store.Store, persona Persona, cfg ChatConfig) *Chat {
	if logger == nil {
		logger = slog.Default()
	}
	if persona == nil {
		persona = staticPersona(DefaultPersona)
	}
	if cfg.MaxLoopSteps < 1 {
		cfg.MaxLoopSteps = 3
	}
	if cfg.RecentLimit < 1 {
		cfg.RecentLimit = 10
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	return &Chat{
		logger:     logger,
		llm:        responder,
		store:      st,
		dispatcher: NewDispatcher(st),
		persona:    persona,
		cfg:        cfg,
	}
}

// Execute runs a user-confirmed directive against the tenant's data.
func (c *Chat) Execute(ctx context.Context, kind ActionKind, data map[string]any, userID string) (any, error) {
	return c.dispatcher.Dispatch(ctx, kind, data, userID)
}

// Process handles one chat turn. Model and transport failures degrade to an
// explanatory reply instead of an error; only context-build (storage) failures
// propagate.
func (c *Chat) Process(ctx context.Context, message string, history []Turn, userID string) (string, error) {
	snapshot, err := BuildContext(ctx, c.store, userID, c.cfg.RecentLimit)
	if err != nil {
		return "", err
	}

	today := time.Now().UTC().Format("2006-01-02")
	prompt := buildPrompt(c.persona.Text(), today, snapshot, history, message)

	for step := 1; step <= c.cfg.MaxLoopSteps; step++ {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		reply, err := c.llm.Generate(callCtx, prompt)
		cancel()
		if err != nil {
			c.logger.Warn("model call failed", "step", step, "endpoint", c.llm.Endpoint(), "error", err)
			return fmt.Sprintf(
				"I couldn't reach the language model at %s right now. Please make sure it is running and try again.",
				c.llm.Endpoint(),
			), nil
		}

		directive := Extract(reply)
		if directive.IsSilent() && step < c.cfg.MaxLoopSteps {
			result, dispatchErr := c.dispatcher.Dispatch(ctx, directive.Kind, directive.Data, userID)
			observation := serializeObservation(result, dispatchErr)
			c.logger.Info("silent read executed", "kind", directive.Kind, "step", step)
			prompt = accumulate(prompt, reply, directive.Kind, observation)
			continue
		}

		return c.finalize(reply), nil
	}
	return c.finalize(""), nil
}

// accumulate threads the raw reply and its observation back into the running
// prompt so the next model call sees the full loop state.
func accumulate(prompt, reply string, kind ActionKind, observation string) string {
	builder := strings.Builder{}
	builder.WriteString(prompt)
	builder.WriteString(" ")
	builder.WriteString(strings.TrimSpace(reply))
	builder.WriteString(fmt.Sprintf("\nOBSERVATION (%s): %s\n", kind, observation))
	builder.WriteString("Use the observation to answer the user or propose an action. Do not mention the lookup.\nAssistant:")
	return builder.String()
}

func serializeObservation(result any, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	if result == nil {
		return "null (not found)"
	}
	if doc, ok := result.(store.Document); ok && doc == nil {
		return "null (not found)"
	}
	raw, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(raw)
}

// finalize post-processes the reply shown to the user: silent-read tags are
// implementation detail and are removed entirely; surviving proposal tags are
// rewritten with clean JSON, free of markdown fences; native tool-call blocks
// are converted to the proposal tag format.
func (c *Chat) finalize(reply string) string {
	cleaned := actionTagPattern.ReplaceAllStringFunc(reply, func(match string) string {
		directive := parseActionTag(match)
		if directive == nil {
			return match
		}
		if directive.IsSilent() {
			return ""
		}
		return renderActionTag(directive)
	})
	cleaned = toolCallPattern.ReplaceAllStringFunc(cleaned, func(match string) string {
		directive := parseToolCall(match)
		if directive == nil {
			return match
		}
		if directive.IsSilent() {
			return ""
		}
		return renderActionTag(directive)
	})
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "I wasn't able to finish looking that up. Could you try asking again?"
	}
	return cleaned
}

func renderActionTag(directive *Directive) string {
	raw, err := json.Marshal(taggedAction{
		Type:    string(directive.Kind),
		Data:    directive.Data,
		Summary: directive.Summary,
	})
	if err != nil {
		return ""
	}
	return "<action>" + string(raw) + "</action>"
}
