package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sefer-erp/sefer-erp/internal/rbac"
	"github.com/sefer-erp/sefer-erp/internal/shared"
	_ "github.com/sefer-erp/sefer-erp/testing"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", time.Hour, false)
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == "test_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLoadWithoutCookieIsAnonymous(t *testing.T) {
	sm := newSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	_, ok := sess.Actor()
	require.False(t, ok)
}

func TestActorRoundTripsThroughCommit(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	sess.SetActor(shared.Actor{ID: 7, Name: "Ayşe Koordinatör", Role: rbac.RoleCoordinator})

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))

	cookie := sessionCookie(t, res)
	require.Equal(t, sess.ID, cookie.Value)
	require.True(t, cookie.HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)

	actor, ok := loaded.Actor()
	require.True(t, ok)
	require.Equal(t, int64(7), actor.ID)
	require.Equal(t, "Ayşe Koordinatör", actor.Name)
	require.Equal(t, rbac.RoleCoordinator, actor.Role)
}

func TestUnknownRoleYieldsNoActor(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	sess.SetActor(shared.Actor{ID: 9, Name: "Bilinmeyen", Role: rbac.Role("SUPERUSER")})

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(sessionCookie(t, res))
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)

	_, ok := loaded.Actor()
	require.False(t, ok)
}

func TestDestroyClearsSessionAndCookie(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetActor(shared.Actor{ID: 1, Name: "Admin", Role: rbac.RoleAdmin})

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	cookie := sessionCookie(t, res)

	sm.Destroy(sess)
	cleared := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, cleared, sess))
	require.Equal(t, -1, sessionCookie(t, cleared).MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)

	_, ok := loaded.Actor()
	require.False(t, ok)
}
