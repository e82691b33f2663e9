// Package agent wires the travel assistant's stages into the orchestration
// graph and exposes the single public entry point, SendMessage.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/soyeahso/voyant/internal/domain"
	"github.com/soyeahso/voyant/internal/graph"
	"github.com/soyeahso/voyant/internal/llm"
	"github.com/soyeahso/voyant/internal/logging"
	"github.com/soyeahso/voyant/internal/store"
	"github.com/soyeahso/voyant/internal/tools"
)

// FallbackReply is returned when the turn cannot produce a well-formed
// agent reply. Orchestration failures degrade to this instead of raising.
const FallbackReply = "Could not get a response from the AI agent. Please try again."

// Node names in the orchestration graph.
const (
	nodeClassify = "classify_intent"
	nodeExtract  = "extract_preferences"
	nodeChatbot  = "chatbot"
	nodeTools    = "tools"
)

// defaultMaxToolRounds bounds the tools→chatbot loop per turn. The model
// gets one shot at consuming tool results before the turn is cut off.
const defaultMaxToolRounds = 1

// RunnerConfig configures the session runner.
type RunnerConfig struct {
	// MaxToolRounds is how many tool rounds one turn may take. Zero selects
	// the default of one round.
	MaxToolRounds int
}

// Runner drives one conversation turn through the orchestration graph:
// load state, run to completion, persist, return the reply. Turns on the
// same conversation id are strictly serialized; different ids run freely
// in parallel.
type Runner struct {
	exec  *graph.Executor
	store store.ConversationStore
	log   *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner builds the travel assistant graph around the given capabilities
// and returns a runner using the injected conversation store.
func NewRunner(cfg RunnerConfig, client llm.Client, registry *tools.Registry, st store.ConversationStore, log *logging.Logger) (*Runner, error) {
	stages := NewStages(client, registry, log)

	g := graph.New()
	for name, fn := range map[string]graph.StageFunc{
		nodeClassify: stages.ClassifyIntent,
		nodeExtract:  stages.ExtractPreferences,
		nodeChatbot:  stages.GenerateResponse,
		nodeTools:    stages.InvokeTools,
	} {
		if err := g.AddNode(name, fn); err != nil {
			return nil, err
		}
	}

	g.AddEdge(graph.Start, nodeClassify)
	g.AddEdge(graph.Start, nodeExtract)
	g.AddEdge(nodeClassify, nodeChatbot)
	g.AddEdge(nodeExtract, nodeChatbot)
	g.AddEdge(nodeTools, nodeChatbot)
	if err := g.AddConditionalEdge(nodeChatbot, routeAfterChatbot); err != nil {
		return nil, err
	}

	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = defaultMaxToolRounds
	}
	// The chatbot runs once plus once per tool round.
	exec, err := graph.NewExecutor(g, rounds+1, log)
	if err != nil {
		return nil, err
	}

	return &Runner{
		exec:  exec,
		store: st,
		log:   log.Sub("agent"),
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// routeAfterChatbot sends control to the tools node if and only if the
// latest message is an agent message with pending tool calls. Anything that
// is not an agent message here is a contract violation.
func routeAfterChatbot(state *domain.ConversationState) (string, error) {
	last, ok := state.LastMessage()
	if !ok || last.Role != domain.RoleAgent {
		return "", fmt.Errorf("expected an agent message after chatbot, got %q", last.Role)
	}
	if last.PendingToolCalls() {
		return nodeTools, nil
	}
	return graph.End, nil
}

// SendMessage runs one conversation turn and returns the agent's reply.
//
// The turn commits all-or-nothing: the graph runs against a copy of the
// loaded state, and only a fully successful turn is persisted. Failures of
// orchestration integrity degrade to FallbackReply with a nil error;
// persistence failures are returned as errors since retrying blindly is
// unsafe.
func (r *Runner) SendMessage(ctx context.Context, conversationID, userText string) (string, error) {
	lock := r.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	state, err := r.store.Load(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("loading conversation %s: %w", conversationID, err)
	}

	work := state.Clone()
	work.Messages = append(work.Messages, domain.Message{
		Role:      domain.RoleUser,
		Content:   userText,
		Timestamp: time.Now(),
	})

	r.log.Info().
		Str("conversationId", conversationID).
		Int("historyLen", len(state.Messages)).
		Msg("processing message")

	if err := r.exec.Run(ctx, work); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		r.log.Error().Err(err).Str("conversationId", conversationID).Msg("turn failed")
		return FallbackReply, nil
	}

	last, ok := work.LastMessage()
	if !ok || last.Role != domain.RoleAgent || last.PendingToolCalls() {
		r.log.Error().Str("conversationId", conversationID).Msg("turn ended without a clean agent reply")
		return FallbackReply, nil
	}

	if err := r.store.Save(ctx, conversationID, work); err != nil {
		return "", fmt.Errorf("persisting conversation %s: %w", conversationID, err)
	}

	r.log.Info().
		Str("conversationId", conversationID).
		Str("intent", string(work.Intent)).
		Dur("duration", time.Since(start)).
		Msg("reply generated")

	return last.Content, nil
}

// conversationLock returns the mutex serializing turns for one id.
func (r *Runner) conversationLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
