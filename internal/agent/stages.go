package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/soyeahso/voyant/internal/domain"
	"github.com/soyeahso/voyant/internal/graph"
	"github.com/soyeahso/voyant/internal/llm"
	"github.com/soyeahso/voyant/internal/logging"
	"github.com/soyeahso/voyant/internal/tools"
)

// Recency windows for the prompt context of each stage.
const (
	classifyWindow = 3
	chatbotWindow  = 10
)

// confidenceGate is the minimum classifier confidence required to change
// the conversation's intent.
const confidenceGate = 0.5

// Stages holds the stage functions and the capabilities they invoke. Each
// stage reads a state snapshot and returns a partial update; none of them
// mutates state directly.
type Stages struct {
	llm   llm.Client
	tools *tools.Registry
	log   *logging.Logger
	now   func() time.Time
}

// NewStages creates the stage set.
func NewStages(client llm.Client, registry *tools.Registry, log *logging.Logger) *Stages {
	return &Stages{
		llm:   client,
		tools: registry,
		log:   log.Sub("stages"),
		now:   time.Now,
	}
}

// ClassifyIntent asks the model to classify the user's latest ask, gated by
// confidence: a result at or below the gate never changes the intent, so a
// hesitant classifier cannot destabilize routing.
func (s *Stages) ClassifyIntent(ctx context.Context, state domain.ConversationState) (graph.Update, error) {
	req := llm.CompletionRequest{
		System:   renderClassificationPrompt(state.Intent, s.now()),
		Messages: toCompletionMessages(state.Window(classifyWindow)),
	}

	classification := domain.IntentClassification{Intent: string(domain.IntentUnknown)}
	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		s.log.Debug().Err(err).Msg("intent classification failed, defaulting to unknown")
	} else if err := llm.DecodeStructured(resp.Content, &classification); err != nil {
		s.log.Debug().Err(err).Msg("unparseable classification, defaulting to unknown")
		classification = domain.IntentClassification{Intent: string(domain.IntentUnknown)}
	}

	if classification.Confidence <= confidenceGate {
		s.log.Debug().
			Float64("confidence", classification.Confidence).
			Str("label", classification.Intent).
			Msg("classification below confidence gate, keeping prior intent")
		return graph.Update{}, nil
	}

	intent := domain.ParseIntent(classification.Intent)
	s.log.Info().
		Str("intent", string(intent)).
		Float64("confidence", classification.Confidence).
		Msg("intent classified")
	return graph.Update{Intent: &intent}, nil
}

// ExtractPreferences pulls explicitly stated preference fields out of the
// latest message and merges them into the known set. A failed completion or
// unparseable result extracts nothing, leaving known preferences untouched.
func (s *Stages) ExtractPreferences(ctx context.Context, state domain.ConversationState) (graph.Update, error) {
	var window []domain.Message
	if last, ok := state.LastMessage(); ok {
		window = []domain.Message{last}
	}

	req := llm.CompletionRequest{
		System:   renderExtractionPrompt(state.Preferences),
		Messages: toCompletionMessages(window),
	}

	var extracted domain.Preferences
	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		s.log.Debug().Err(err).Msg("preference extraction failed, keeping known preferences")
	} else if err := llm.DecodeStructured(resp.Content, &extracted); err != nil {
		s.log.Debug().Err(err).Msg("unparseable extraction, keeping known preferences")
		extracted = domain.Preferences{}
	}

	merged := state.Preferences.Merge(extracted)
	return graph.Update{Preferences: &merged}, nil
}

// GenerateResponse selects the specialist prompt and allowed tools for the
// current intent and produces one agent message, which may carry pending
// tool calls parsed from the completion text.
func (s *Stages) GenerateResponse(ctx context.Context, state domain.ConversationState) (graph.Update, error) {
	template, ok := intentPrompts[state.Intent]
	if !ok {
		template = defaultSystemPrompt
	}
	defs := s.tools.Defs(intentTools[state.Intent])

	req := llm.CompletionRequest{
		System:   renderSystemPrompt(template, state.Preferences, defs, s.now()),
		Messages: toCompletionMessages(state.Window(chatbotWindow)),
	}

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return graph.Update{}, fmt.Errorf("completion: %w", err)
	}

	msg := domain.Message{
		Role:      domain.RoleAgent,
		Timestamp: s.now(),
	}

	calls := parseToolCalls(resp.Content)
	if len(calls) > 0 {
		// Keep the raw content so the history shows what was requested.
		msg.Content = resp.Content
		msg.ToolCalls = calls
		s.log.Info().Int("toolCalls", len(calls)).Msg("agent requested tools")
	} else {
		msg.Content = stripToolCalls(resp.Content)
	}

	return graph.Update{Messages: []domain.Message{msg}}, nil
}

// InvokeTools executes the pending calls on the latest agent message and
// appends one tool-result message per call, preserving order. Tool failures
// never raise; the degraded output becomes the result content.
func (s *Stages) InvokeTools(ctx context.Context, state domain.ConversationState) (graph.Update, error) {
	last, ok := state.LastMessage()
	if !ok || !last.PendingToolCalls() {
		return graph.Update{}, fmt.Errorf("invoke tools: latest message carries no pending tool calls")
	}

	results := make([]domain.Message, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		content := s.executeTool(ctx, call)
		results = append(results, domain.Message{
			Role:      domain.RoleToolResult,
			Content:   content,
			Timestamp: s.now(),
		})
	}
	return graph.Update{Messages: results}, nil
}

func (s *Stages) executeTool(ctx context.Context, call domain.ToolCall) string {
	tool, ok := s.tools.Get(call.Name)
	if !ok {
		s.log.Warn().Str("tool", call.Name).Msg("agent requested unknown tool")
		return fmt.Sprintf("Tool %q is not available.", call.Name)
	}

	s.log.Debug().Str("tool", call.Name).Msg("executing tool")
	output, err := tool.Execute(ctx, call.Input)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", call.Name).Msg("tool execution failed")
		return fmt.Sprintf("Tool %q failed to execute.", call.Name)
	}
	return output
}

// toCompletionMessages maps conversation messages onto the completion roles.
// Tool results are presented to the model as user turns since the providers
// here have no native tool role.
func toCompletionMessages(msgs []domain.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleAgent:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		case domain.RoleToolResult:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: "Tool execution result:\n" + m.Content})
		default:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: m.Content})
		}
	}
	return out
}
