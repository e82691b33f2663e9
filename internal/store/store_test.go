package store

import (
	"context"
	"testing"
	"time"

	"github.com/soyeahso/voyant/internal/domain"
	"github.com/soyeahso/voyant/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func sampleState() *domain.ConversationState {
	state := domain.NewConversationState()
	state.Intent = domain.IntentPacking
	state.Preferences = domain.Preferences{
		Destination: strp("Iceland"),
		TimeOfYear:  strp("winter"),
	}
	state.Messages = []domain.Message{
		{Role: domain.RoleUser, Content: "What should I pack for Iceland?", Timestamp: time.Now()},
		{
			Role:    domain.RoleAgent,
			Content: "checking the forecast",
			ToolCalls: []domain.ToolCall{
				{Name: "get_weather_forecast", Input: `{"location":"Iceland"}`},
			},
			Timestamp: time.Now(),
		},
		{Role: domain.RoleToolResult, Content: "[2026-01-10] High: 2.0°C, Low: -4.0°C, Chance of rain: 60", Timestamp: time.Now()},
		{Role: domain.RoleAgent, Content: "Pack warm layers.", Timestamp: time.Now()},
	}
	return state
}

// conversationStores builds one of each implementation so the contract
// tests run against both.
func conversationStores(t *testing.T) map[string]ConversationStore {
	t.Helper()
	sqlite, err := OpenSQLite(":memory:", logging.Silent())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]ConversationStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestLoadAbsentReturnsDefault(t *testing.T) {
	for name, s := range conversationStores(t) {
		t.Run(name, func(t *testing.T) {
			state, err := s.Load(context.Background(), "never-seen")
			require.NoError(t, err)
			assert.Equal(t, domain.IntentUnknown, state.Intent)
			assert.Empty(t, state.Messages)
			assert.True(t, state.Preferences.IsEmpty())
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, s := range conversationStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleState()
			require.NoError(t, s.Save(ctx, "conv-1", want))

			got, err := s.Load(ctx, "conv-1")
			require.NoError(t, err)
			assert.Equal(t, want.Intent, got.Intent)
			assert.Equal(t, want.Preferences, got.Preferences)
			require.Len(t, got.Messages, len(want.Messages))
			for i := range want.Messages {
				assert.Equal(t, want.Messages[i].Role, got.Messages[i].Role)
				assert.Equal(t, want.Messages[i].Content, got.Messages[i].Content)
				assert.Equal(t, want.Messages[i].ToolCalls, got.Messages[i].ToolCalls)
			}
		})
	}
}

func TestSaveAppendsAcrossTurns(t *testing.T) {
	for name, s := range conversationStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			turn1 := domain.NewConversationState()
			turn1.Messages = []domain.Message{
				{Role: domain.RoleUser, Content: "hi"},
				{Role: domain.RoleAgent, Content: "hello"},
			}
			require.NoError(t, s.Save(ctx, "conv-2", turn1))

			turn2, err := s.Load(ctx, "conv-2")
			require.NoError(t, err)
			turn2.Intent = domain.IntentFood
			turn2.Messages = append(turn2.Messages,
				domain.Message{Role: domain.RoleUser, Content: "food in Tokyo?"},
				domain.Message{Role: domain.RoleAgent, Content: "Try the markets."},
			)
			require.NoError(t, s.Save(ctx, "conv-2", turn2))

			got, err := s.Load(ctx, "conv-2")
			require.NoError(t, err)
			assert.Equal(t, domain.IntentFood, got.Intent)
			require.Len(t, got.Messages, 4)
			assert.Equal(t, "Try the markets.", got.Messages[3].Content)
		})
	}
}

func TestLoadReturnsIndependentCopy(t *testing.T) {
	for name, s := range conversationStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, "conv-3", sampleState()))

			first, err := s.Load(ctx, "conv-3")
			require.NoError(t, err)
			first.Messages[0].Content = "mutated"
			first.Intent = domain.IntentUnknown

			second, err := s.Load(ctx, "conv-3")
			require.NoError(t, err)
			assert.Equal(t, "What should I pack for Iceland?", second.Messages[0].Content)
			assert.Equal(t, domain.IntentPacking, second.Intent)
		})
	}
}

func TestSQLiteRejectsShrunkHistory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(":memory:", logging.Silent())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, "conv-4", sampleState()))

	shrunk := domain.NewConversationState()
	shrunk.Messages = []domain.Message{{Role: domain.RoleUser, Content: "only one"}}
	err = s.Save(ctx, "conv-4", shrunk)
	require.Error(t, err)

	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
}

func TestSQLiteSaveAfterClose(t *testing.T) {
	s, err := OpenSQLite(":memory:", logging.Silent())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Save(context.Background(), "conv-5", sampleState())
	require.Error(t, err)

	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
}
