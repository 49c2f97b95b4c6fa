package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tai-edu/tai/internal/api"
	"github.com/tai-edu/tai/internal/devserver"
	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
	"github.com/tai-edu/tai/internal/store"
)

type fixture struct {
	client   *api.Client
	ids      *identity.Local
	courseID string
	failChat atomic.Bool
}

// newFixture starts a dev server with one course that has material, and a
// student identity. Chat requests fail while failChat is set.
func newFixture(t *testing.T, withMaterial bool) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{}

	handler := devserver.New().Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.failChat.Load() && r.Method == http.MethodPost && r.URL.Path == "/api/chat" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	f.client = api.New(srv.URL)
	course, err := f.client.CreateCourse(ctx, "Biology", "BIO1")
	require.NoError(t, err)
	f.courseID = course.ID
	if withMaterial {
		_, err = f.client.UploadFile(ctx, course.ID, "cells.md", strings.NewReader("# Cells\nThe cell is the unit of life."))
		require.NoError(t, err)
	}

	f.ids = identity.NewLocal(store.NewMemory())
	_, err = identity.NewOnboarding(f.ids, f.client, nil).SelectRole(ctx, domain.RoleStudent)
	require.NoError(t, err)
	return f
}

func (f *fixture) open(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := NewSession(f.courseID, f.ids, f.client, opts...)
	require.NoError(t, s.Open(context.Background()))
	return s
}

func TestOpenRedirects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	t.Run("no identity", func(t *testing.T) {
		s := NewSession(f.courseID, identity.NewLocal(store.NewMemory()), f.client)
		err := s.Open(ctx)
		var redirect *identity.RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, identity.RouteRoleSelect, redirect.Route)
		assert.Equal(t, PhaseLoading, s.State().Phase)
	})

	t.Run("teacher", func(t *testing.T) {
		ids := identity.NewLocal(store.NewMemory())
		require.NoError(t, ids.Save(ctx, domain.RoleTeacher, "t-1"))
		err := NewSession(f.courseID, ids, f.client).Open(ctx)
		var redirect *identity.RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, identity.RouteTeacherHome, redirect.Route)
	})
}

func TestOpenLoadFailure(t *testing.T) {
	f := newFixture(t, false)

	s := NewSession("missing-course", f.ids, f.client)
	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))

	st := s.State()
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, LoadErrorMessage, st.Error)

	_, ok := s.Begin("hello", false)
	assert.False(t, ok, "no sends outside the ready phase")
}

func TestOpenCreatesFreshSessionForDevice(t *testing.T) {
	f := newFixture(t, false)
	first := f.open(t).State()
	second := f.open(t).State()

	assert.Equal(t, PhaseReady, first.Phase)
	assert.Equal(t, "Biology", first.Course.Name)
	assert.Empty(t, first.Messages)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestSendConfirmsAndTracksHintLevel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	s := f.open(t)

	assert.False(t, s.State().AnotherHintEnabled(), "disabled with no messages")

	r, ok := s.Send(ctx, "  What is a cell?  ", false)
	require.True(t, ok)
	require.NoError(t, r.Err)
	assert.Equal(t, "What is a cell?", r.Pending.Request.Message)

	st := s.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, StateConfirmed, st.Messages[0].State)
	assert.Equal(t, KindAssistant, Classify(st.Messages[1]))
	assert.Equal(t, 0, st.HintLevel)
	assert.True(t, st.AnotherHintEnabled())

	for i := 0; i < domain.MaxHintLevel; i++ {
		r, ok := s.RequestHint(ctx, AnotherHint, "")
		require.True(t, ok)
		require.NoError(t, r.Err)
		assert.True(t, r.Pending.Request.RequestHintIncrease)
	}

	st = s.State()
	assert.Equal(t, domain.MaxHintLevel, st.HintLevel)
	assert.False(t, st.AnotherHintEnabled(), "disabled at the top level")
	assert.Len(t, st.Messages, 8)
}

func TestRefusalFromStructuredAction(t *testing.T) {
	f := newFixture(t, false)
	s := f.open(t)

	_, ok := s.Send(context.Background(), "Explain quantum gravity", false)
	require.True(t, ok)

	msgs := s.State().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.ActionRefuseOutOfScope, msgs[1].Action)
	assert.Equal(t, KindRefusal, Classify(msgs[1]))
}

func TestFailedSendRollsBackOptimisticMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	s := f.open(t)

	_, ok := s.Send(ctx, "first question", false)
	require.True(t, ok)
	before := s.State()

	f.failChat.Store(true)
	r, ok := s.Send(ctx, "second question", true)
	require.True(t, ok)
	require.Error(t, r.Err)

	after := s.State()
	assert.Equal(t, before.Messages, after.Messages, "prior history unchanged")
	assert.Equal(t, before.HintLevel, after.HintLevel)
	assert.Equal(t, SendErrorMessage, after.Error)
	assert.False(t, after.Sending)

	failed, ok := s.Transcript().LastFailed()
	require.True(t, ok)
	assert.Equal(t, "second question", failed.Message.Content)

	s.DismissError()
	assert.Empty(t, s.State().Error)
}

func TestBeginIsNoOpWhileSendingOrBlank(t *testing.T) {
	f := newFixture(t, true)
	s := f.open(t)

	_, ok := s.Begin("   ", false)
	assert.False(t, ok)

	_, ok = s.BeginHint(GiveHint, "")
	assert.False(t, ok, "no draft and no history sends nothing")

	p, ok := s.Begin("first", false)
	require.True(t, ok)
	assert.True(t, s.State().Sending)

	before := s.Transcript()
	_, ok = s.Begin("second", false)
	assert.False(t, ok)
	assert.Equal(t, before, s.Transcript())

	s.Complete(s.Dispatch(context.Background(), p))
	assert.False(t, s.State().Sending)
}

type stubBackend struct {
	Backend
	resp *domain.ChatResponse
}

func (b stubBackend) SendMessage(context.Context, domain.ChatRequest) (*domain.ChatResponse, error) {
	if b.resp == nil {
		return nil, errors.New("boom")
	}
	return b.resp, nil
}

func TestHintLevelNeverDecreases(t *testing.T) {
	s := NewSession("c1", nil, nil)
	s.phase = PhaseReady
	s.session = &domain.ChatSession{ID: "s1", CourseID: "c1", StudentID: "device_x"}
	s.hintLevel = 2

	s.backend = stubBackend{resp: &domain.ChatResponse{
		Message:   domain.ChatMessage{ID: "r1", Role: domain.MessageRoleAssistant, Content: "refused", HintLevel: intPtr(0)},
		HintLevel: 0,
		Action:    domain.ActionRefuseOutOfScope,
	}}
	_, ok := s.Send(context.Background(), "anything", false)
	require.True(t, ok)
	assert.Equal(t, 2, s.State().HintLevel)
}
