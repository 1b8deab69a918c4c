package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "vivionix_session", time.Hour, false), mr, client
}

func commitAndCookie(t *testing.T, sm *SessionManager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTripKeepsValuesAndFlashes(t *testing.T) {
	sm, _, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUsername("asha")
	sess.Set("theme", "dark")
	sess.AddFlash(FlashMessage{Kind: FlashSuccess, Message: "Vendor saved."})
	cookie := commitAndCookie(t, sm, sess)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "asha", loaded.Username())
	assert.Equal(t, "dark", loaded.Get("theme"))
	assert.Equal(t, []FlashMessage{{Kind: FlashSuccess, Message: "Vendor saved."}}, loaded.PopFlashes())
	assert.Nil(t, loaded.PopFlashes())
}

func TestSessionLoadIgnoresUnknownCookie(t *testing.T) {
	sm, _, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "vivionix_session", Value: "attacker-chosen"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "attacker-chosen", sess.ID)
	assert.Empty(t, sess.Username())
}

func TestSessionRenewDropsPreviousID(t *testing.T) {
	sm, mr, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	cookie := commitAndCookie(t, sm, sess)
	oldID := cookie.Value
	require.True(t, mr.Exists("vivionix:session:"+oldID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sm.Renew(loaded)
	renewed := commitAndCookie(t, sm, loaded)

	assert.NotEqual(t, oldID, renewed.Value)
	assert.False(t, mr.Exists("vivionix:session:"+oldID))
	assert.True(t, mr.Exists("vivionix:session:"+renewed.Value))
}

func TestSessionDestroyExpiresCookie(t *testing.T) {
	sm, mr, _ := newTestManager(t)
	ctx := context.Background()
	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	commitAndCookie(t, sm, sess)

	sm.Destroy(sess)
	cookie := commitAndCookie(t, sm, sess)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.False(t, mr.Exists("vivionix:session:"+sess.ID))
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm, _, _ := newTestManager(t)
	csrf := NewCSRFManager("csrf-secret")
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	token, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	require.NoError(t, csrf.VerifyToken(sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(sess, ""), ErrCSRFTokenMissing)

	csrf.Rotate(sess)
	rotated, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	assert.NotEqual(t, token, rotated)
}

func TestLockIsExclusiveUntilReleased(t *testing.T) {
	_, _, client := newTestManager(t)
	ctx := context.Background()

	lock, err := AcquireLock(ctx, client, StockScanLockKey, time.Minute)
	require.NoError(t, err)
	_, err = AcquireLock(ctx, client, StockScanLockKey, time.Minute)
	require.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release(ctx))
	again, err := AcquireLock(ctx, client, StockScanLockKey, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}
