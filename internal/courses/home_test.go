package courses

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
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

type env struct {
	client   *api.Client
	requests atomic.Int64
	failAll  atomic.Bool
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{}
	handler := devserver.New().Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.requests.Add(1)
		if e.failAll.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	e.client = api.New(srv.URL)
	return e
}

func (e *env) home(t *testing.T, role domain.Role) *Home {
	t.Helper()
	ids := identity.NewLocal(store.NewMemory())
	_, err := identity.NewOnboarding(ids, e.client, nil).SelectRole(context.Background(), role)
	require.NoError(t, err)
	h := NewHome(role, ids, e.client, nil)
	require.NoError(t, h.Load(context.Background()))
	return h
}

func TestLoadRedirectsOnRoleMismatch(t *testing.T) {
	e := newEnv(t)
	ids := identity.NewLocal(store.NewMemory())
	require.NoError(t, ids.Save(context.Background(), domain.RoleStudent, "u-1"))

	err := NewHome(domain.RoleTeacher, ids, e.client, nil).Load(context.Background())
	var redirect *identity.RedirectError
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, identity.RouteStudentHome, redirect.Route)
}

func TestLoadFailureLeavesEmptyList(t *testing.T) {
	e := newEnv(t)
	h := e.home(t, domain.RoleStudent)

	e.failAll.Store(true)
	require.Error(t, h.Load(context.Background()))
	assert.Empty(t, h.Courses())
}

func TestJoin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.client.CreateCourse(ctx, "Physics", "PHYS1")
	require.NoError(t, err)
	h := e.home(t, domain.RoleStudent)

	t.Run("blank code issues no request", func(t *testing.T) {
		before := e.requests.Load()
		_, err := h.Join(ctx, "   ")
		assert.ErrorIs(t, err, ErrBlankClassCode)
		assert.Equal(t, before, e.requests.Load())
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := h.Join(ctx, "nope")
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("generic failure is distinct", func(t *testing.T) {
		e.failAll.Store(true)
		defer e.failAll.Store(false)
		_, err := h.Join(ctx, "PHYS1")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCourseNotFound))
	})

	t.Run("lowercase code joins once", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			course, err := h.Join(ctx, "phys1")
			require.NoError(t, err)
			assert.Equal(t, "PHYS1", course.ClassCode)
		}
		assert.Len(t, h.Courses(), 1)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	t.Run("students cannot create", func(t *testing.T) {
		_, err := e.home(t, domain.RoleStudent).Create(ctx, "Art", "ART")
		assert.ErrorIs(t, err, ErrTeacherOnly)
	})

	h := e.home(t, domain.RoleTeacher)

	t.Run("validation", func(t *testing.T) {
		before := e.requests.Load()
		_, err := h.Create(ctx, "", "bad code!")
		var fe *FormError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "course name is required", fe.Fields["Name"])
		assert.Equal(t, "class code must contain only letters and digits", fe.Fields["ClassCode"])
		assert.Equal(t, before, e.requests.Load())

		_, err = h.Create(ctx, "Art", "ABCDEFGHIJK")
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "class code must be at most 10 characters", fe.Fields["ClassCode"])
	})

	t.Run("creates and joins", func(t *testing.T) {
		course, err := h.Create(ctx, "  Art History ", "art101")
		require.NoError(t, err)
		assert.Equal(t, "Art History", course.Name)
		assert.Equal(t, "ART101", course.ClassCode)
		assert.Len(t, h.Courses(), 1)

		require.NoError(t, h.Load(ctx))
		assert.Len(t, h.Courses(), 1, "server lists the created course for the teacher")
	})

	t.Run("duplicate code fails", func(t *testing.T) {
		_, err := h.Create(ctx, "Art again", "ART101")
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	})
}

func TestLeaveAndSwitchRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	course, err := e.client.CreateCourse(ctx, "Music", "MUS")
	require.NoError(t, err)
	h := e.home(t, domain.RoleStudent)
	_, err = h.Join(ctx, "MUS")
	require.NoError(t, err)

	e.failAll.Store(true)
	require.Error(t, h.Leave(ctx, course.ID))
	assert.Len(t, h.Courses(), 1)
	e.failAll.Store(false)

	require.NoError(t, h.Leave(ctx, course.ID))
	assert.Empty(t, h.Courses())

	route, err := h.SwitchRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.RouteRoleSelect, route)
	err = h.Load(ctx)
	var redirect *identity.RedirectError
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, identity.RouteRoleSelect, redirect.Route)
}
