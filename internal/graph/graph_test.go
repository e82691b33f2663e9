package graph

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/soyeahso/voyant/internal/domain"
	"github.com/soyeahso/voyant/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intentUpdate(i domain.Intent) Update {
	return Update{Intent: &i}
}

func messageUpdate(role, content string) Update {
	return Update{Messages: []domain.Message{{Role: role, Content: content}}}
}

func constStage(u Update) StageFunc {
	return func(ctx context.Context, state domain.ConversationState) (Update, error) {
		return u, nil
	}
}

func TestValidate(t *testing.T) {
	t.Run("no start edges", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a", constStage(Update{})))
		assert.Error(t, g.Validate())
	})

	t.Run("unknown edge target", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a", constStage(Update{})))
		g.AddEdge(Start, "a")
		g.AddEdge("a", "ghost")
		assert.Error(t, g.Validate())
	})

	t.Run("static cycle", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a", constStage(Update{})))
		require.NoError(t, g.AddNode("b", constStage(Update{})))
		g.AddEdge(Start, "a")
		g.AddEdge("a", "b")
		g.AddEdge("b", "a")
		err := g.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cycle")
	})

	t.Run("duplicate node", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a", constStage(Update{})))
		assert.Error(t, g.AddNode("a", constStage(Update{})))
	})

	t.Run("reserved names", func(t *testing.T) {
		g := New()
		assert.Error(t, g.AddNode(Start, constStage(Update{})))
		assert.Error(t, g.AddNode(End, constStage(Update{})))
	})
}

func TestFanOutSharesSnapshot(t *testing.T) {
	// Both branches must observe the state as it was at superstep start,
	// not each other's updates.
	g := New()
	var aSawIntent, bSawIntent domain.Intent
	require.NoError(t, g.AddNode("a", func(ctx context.Context, s domain.ConversationState) (Update, error) {
		aSawIntent = s.Intent
		return intentUpdate(domain.IntentPacking), nil
	}))
	require.NoError(t, g.AddNode("b", func(ctx context.Context, s domain.ConversationState) (Update, error) {
		bSawIntent = s.Intent
		p := domain.Preferences{}
		return Update{Preferences: &p}, nil
	}))
	g.AddEdge(Start, "a")
	g.AddEdge(Start, "b")
	g.AddEdge("a", End)
	g.AddEdge("b", End)

	e, err := NewExecutor(g, 1, logging.Silent())
	require.NoError(t, err)

	state := domain.NewConversationState()
	require.NoError(t, e.Run(context.Background(), state))

	assert.Equal(t, domain.IntentUnknown, aSawIntent)
	assert.Equal(t, domain.IntentUnknown, bSawIntent)
	assert.Equal(t, domain.IntentPacking, state.Intent)
}

func TestFanInBarrier(t *testing.T) {
	// The join node must run exactly once, after both predecessors.
	g := New()
	var joined int32
	require.NoError(t, g.AddNode("a", constStage(intentUpdate(domain.IntentFood))))
	require.NoError(t, g.AddNode("b", func(ctx context.Context, s domain.ConversationState) (Update, error) {
		p := s.Preferences.Merge(domain.Preferences{})
		return Update{Preferences: &p}, nil
	}))
	require.NoError(t, g.AddNode("join", func(ctx context.Context, s domain.ConversationState) (Update, error) {
		atomic.AddInt32(&joined, 1)
		// Both branch updates must be visible here.
		if s.Intent != domain.IntentFood {
			return Update{}, errors.New("intent update not applied before join")
		}
		return messageUpdate(domain.RoleAgent, "done"), nil
	}))
	g.AddEdge(Start, "a")
	g.AddEdge(Start, "b")
	g.AddEdge("a", "join")
	g.AddEdge("b", "join")
	g.AddEdge("join", End)

	e, err := NewExecutor(g, 1, logging.Silent())
	require.NoError(t, err)

	state := domain.NewConversationState()
	require.NoError(t, e.Run(context.Background(), state))
	assert.EqualValues(t, 1, joined)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "done", state.Messages[0].Content)
}

func TestUpdateApplyCommutative(t *testing.T) {
	intent := domain.IntentPacking
	dest := "Iceland"
	prefs := domain.Preferences{Destination: &dest}

	u1 := Update{Intent: &intent}
	u2 := Update{Preferences: &prefs}

	s1 := domain.NewConversationState()
	u1.Apply(s1)
	u2.Apply(s1)

	s2 := domain.NewConversationState()
	u2.Apply(s2)
	u1.Apply(s2)

	assert.Equal(t, s1, s2)
}

func TestConditionalRoutingAndLoop(t *testing.T) {
	// work loops back through again until state says stop.
	g := New()
	require.NoError(t, g.AddNode("work", func(ctx context.Context, s domain.ConversationState) (Update, error) {
		return messageUpdate(domain.RoleAgent, "pass"), nil
	}))
	require.NoError(t, g.AddNode("again", constStage(messageUpdate(domain.RoleToolResult, "looped"))))
	g.AddEdge(Start, "work")
	g.AddEdge("again", "work")
	require.NoError(t, g.AddConditionalEdge("work", func(s *domain.ConversationState) (string, error) {
		if len(s.Messages) < 3 {
			return "again", nil
		}
		return End, nil
	}))

	e, err := NewExecutor(g, 2, logging.Silent())
	require.NoError(t, err)

	state := domain.NewConversationState()
	require.NoError(t, e.Run(context.Background(), state))

	// work, again, work → pass / looped / pass
	require.Len(t, state.Messages, 3)
	assert.Equal(t, []string{"pass", "looped", "pass"},
		[]string{state.Messages[0].Content, state.Messages[1].Content, state.Messages[2].Content})
}

func TestLoopBoundViolation(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("work", constStage(messageUpdate(domain.RoleAgent, "x"))))
	require.NoError(t, g.AddNode("again", constStage(Update{})))
	g.AddEdge(Start, "work")
	g.AddEdge("again", "work")
	require.NoError(t, g.AddConditionalEdge("work", func(s *domain.ConversationState) (string, error) {
		return "again", nil // never ends
	}))

	e, err := NewExecutor(g, 2, logging.Silent())
	require.NoError(t, err)

	err = e.Run(context.Background(), domain.NewConversationState())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRouting)
}

func TestRouterErrorIsRoutingViolation(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("work", constStage(Update{})))
	g.AddEdge(Start, "work")
	require.NoError(t, g.AddConditionalEdge("work", func(s *domain.ConversationState) (string, error) {
		return "", errors.New("unexpected terminal message")
	}))

	e, err := NewExecutor(g, 1, logging.Silent())
	require.NoError(t, err)

	err = e.Run(context.Background(), domain.NewConversationState())
	assert.ErrorIs(t, err, ErrRouting)
}

func TestStageErrorPropagates(t *testing.T) {
	g := New()
	boom := errors.New("boom")
	require.NoError(t, g.AddNode("work", func(ctx context.Context, s domain.ConversationState) (Update, error) {
		return Update{}, boom
	}))
	g.AddEdge(Start, "work")
	g.AddEdge("work", End)

	e, err := NewExecutor(g, 1, logging.Silent())
	require.NoError(t, err)

	err = e.Run(context.Background(), domain.NewConversationState())
	assert.ErrorIs(t, err, boom)
}

func TestRunHonorsCancellation(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("work", constStage(Update{})))
	g.AddEdge(Start, "work")
	g.AddEdge("work", End)

	e, err := NewExecutor(g, 1, logging.Silent())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = e.Run(ctx, domain.NewConversationState())
	assert.ErrorIs(t, err, context.Canceled)
}
