// Package chat holds the student chat session: the transcript reducer, the
// session controller and the helpers the chat view renders with.
package chat

import (
	"time"

	"github.com/tai-edu/tai/internal/domain"
)

// EntryState tracks an optimistic message through its send.
type EntryState int

const (
	StatePending EntryState = iota
	StateConfirmed
	StateFailed
)

func (s EntryState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry is one transcript row. ID is the client correlation id for
// locally sent messages and the server id for everything else.
type Entry struct {
	ID      string
	State   EntryState
	Message domain.ChatMessage
	// Action is set only for assistant replies received in this session.
	Action domain.ChatAction
}

// Transcript is the ordered list of entries. Reduce never mutates its input.
type Transcript struct {
	Entries []Entry
}

// Displayed returns the entries that should be rendered: everything except
// failed sends.
func (t Transcript) Displayed() []Entry {
	out := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.State != StateFailed {
			out = append(out, e)
		}
	}
	return out
}

// LastFailed returns the most recent failed send, if any.
func (t Transcript) LastFailed() (Entry, bool) {
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].State == StateFailed {
			return t.Entries[i], true
		}
	}
	return Entry{}, false
}

func (t Transcript) index(id string) int {
	for i, e := range t.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Event is a transcript transition.
type Event interface {
	isEvent()
}

// HistoryLoaded replaces the transcript with server history.
type HistoryLoaded struct {
	Messages []domain.ChatMessage
}

// SendStarted appends a pending user message.
type SendStarted struct {
	ID        string
	SessionID string
	Content   string
	At        time.Time
}

// SendConfirmed confirms a pending message and appends the reply.
type SendConfirmed struct {
	ID       string
	Response domain.ChatResponse
}

// SendFailed marks a pending message as failed.
type SendFailed struct {
	ID string
}

func (HistoryLoaded) isEvent() {}
func (SendStarted) isEvent()   {}
func (SendConfirmed) isEvent() {}
func (SendFailed) isEvent()    {}

// Reduce applies ev to t and returns the new transcript. Events naming an
// unknown or already settled correlation id are ignored.
func Reduce(t Transcript, ev Event) Transcript {
	switch ev := ev.(type) {
	case HistoryLoaded:
		entries := make([]Entry, 0, len(ev.Messages))
		for _, m := range ev.Messages {
			entries = append(entries, Entry{ID: m.ID, State: StateConfirmed, Message: m})
		}
		return Transcript{Entries: entries}

	case SendStarted:
		entries := append(clone(t.Entries), Entry{
			ID:    ev.ID,
			State: StatePending,
			Message: domain.ChatMessage{
				ID:        ev.ID,
				SessionID: ev.SessionID,
				Role:      domain.MessageRoleUser,
				Content:   ev.Content,
				CreatedAt: ev.At,
			},
		})
		return Transcript{Entries: entries}

	case SendConfirmed:
		i := t.index(ev.ID)
		if i < 0 || t.Entries[i].State != StatePending {
			return t
		}
		entries := clone(t.Entries)
		entries[i].State = StateConfirmed

		reply := ev.Response.Message
		replyID := reply.ID
		if replyID == "" {
			replyID = ev.ID + ":reply"
		}
		entries = append(entries, Entry{
			ID:      replyID,
			State:   StateConfirmed,
			Message: reply,
			Action:  ev.Response.Action,
		})
		return Transcript{Entries: entries}

	case SendFailed:
		i := t.index(ev.ID)
		if i < 0 || t.Entries[i].State != StatePending {
			return t
		}
		entries := clone(t.Entries)
		entries[i].State = StateFailed
		return Transcript{Entries: entries}
	}
	return t
}

func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries), len(entries)+2)
	copy(out, entries)
	return out
}
