package chat

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/tai-edu/tai/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestReduceHistoryLoaded(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	history := []domain.ChatMessage{
		{ID: "m1", SessionID: "s1", Role: domain.MessageRoleUser, Content: "hi", CreatedAt: at},
		{ID: "m2", SessionID: "s1", Role: domain.MessageRoleAssistant, Content: "hello", HintLevel: intPtr(0), CreatedAt: at},
	}

	got := Reduce(Transcript{Entries: []Entry{{ID: "stale"}}}, HistoryLoaded{Messages: history})

	want := Transcript{Entries: []Entry{
		{ID: "m1", State: StateConfirmed, Message: history[0]},
		{ID: "m2", State: StateConfirmed, Message: history[1]},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reduce(HistoryLoaded) mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceSendLifecycle(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	base := Transcript{Entries: []Entry{
		{ID: "m1", State: StateConfirmed, Message: domain.ChatMessage{ID: "m1", Role: domain.MessageRoleUser, Content: "earlier"}},
	}}

	started := Reduce(base, SendStarted{ID: "c1", SessionID: "s1", Content: "why?", At: at})
	assert.Len(t, base.Entries, 1, "input transcript is not mutated")
	assert.Len(t, started.Entries, 2)
	assert.Equal(t, StatePending, started.Entries[1].State)
	assert.Len(t, started.Displayed(), 2, "pending entries are shown")

	t.Run("confirmed", func(t *testing.T) {
		reply := domain.ChatMessage{ID: "r1", SessionID: "s1", Role: domain.MessageRoleAssistant, Content: "because", HintLevel: intPtr(1)}
		got := Reduce(started, SendConfirmed{ID: "c1", Response: domain.ChatResponse{
			Message: reply, HintLevel: 1, Action: domain.ActionAnswer,
		}})

		want := Transcript{Entries: []Entry{
			base.Entries[0],
			{ID: "c1", State: StateConfirmed, Message: domain.ChatMessage{
				ID: "c1", SessionID: "s1", Role: domain.MessageRoleUser, Content: "why?", CreatedAt: at,
			}},
			{ID: "r1", State: StateConfirmed, Message: reply, Action: domain.ActionAnswer},
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Reduce(SendConfirmed) mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("failed", func(t *testing.T) {
		got := Reduce(started, SendFailed{ID: "c1"})

		if diff := cmp.Diff(base.Entries, got.Displayed()); diff != "" {
			t.Errorf("displayed history after failure mismatch (-want +got):\n%s", diff)
		}
		failed, ok := got.LastFailed()
		assert.True(t, ok)
		assert.Equal(t, "why?", failed.Message.Content)
	})

	t.Run("settled ids are ignored", func(t *testing.T) {
		failed := Reduce(started, SendFailed{ID: "c1"})
		again := Reduce(failed, SendConfirmed{ID: "c1", Response: domain.ChatResponse{}})
		assert.Equal(t, failed, again)

		unknown := Reduce(started, SendFailed{ID: "nope"})
		assert.Equal(t, started, unknown)
	})
}
