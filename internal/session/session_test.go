package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarrierNeverLeaksPassword(t *testing.T) {
	c := NewCarrier("alice", "hunter2")

	assert.Equal(t, "alice", c.Username())
	assert.Equal(t, "hunter2", c.Password())

	for _, verb := range []string{"%v", "%+v", "%#v", "%s"} {
		out := fmt.Sprintf(verb, c)
		assert.NotContains(t, out, "hunter2", verb)
		assert.NotContains(t, out, "alice", verb)
	}

	data, err := json.Marshal(map[string]any{"carrier": c})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	c := NewCarrier("alice", "pw")

	id, expires := store.Create(c)
	require.NotEmpty(t, id)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, c, got)

	store.Delete(id)
	_, ok = store.Get(id)
	assert.False(t, ok)

	_, ok = store.Get("does-not-exist")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	id, _ := store.Create(NewCarrier("alice", "pw"))

	now = now.Add(9 * time.Minute)
	_, ok := store.Get(id)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = store.Get(id)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestMemoryStorePurgesOnCreate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Create(NewCarrier("a", "1"))
	store.Create(NewCarrier("b", "2"))
	now = now.Add(2 * time.Minute)
	store.Create(NewCarrier("c", "3"))

	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreIDsAreUnique(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, _ := store.Create(NewCarrier("u", "p"))
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)

	raw, err := tokens.Sign("abc-123", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, strings.Contains(raw, "password"))

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestTokensRejectInvalid(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)
	other, err := NewTokens("")
	require.NoError(t, err)

	expired, err := tokens.Sign("abc", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	foreign, err := other.Sign("abc", time.Now().Add(time.Hour))
	require.NoError(t, err)

	valid, err := tokens.Sign("abc", time.Now().Add(time.Hour))
	require.NoError(t, err)
	tampered := valid[:len(valid)-2] + "xx"

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sid": "abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "abc"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"expired":   expired,
		"foreign":   foreign,
		"tampered":  tampered,
		"alg none":  unsigned,
		"no expiry": noExpiry,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(raw)
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestRouterTransitions(t *testing.T) {
	r := NewRouter(false)
	assert.Equal(t, LoggedOut, r.State())
	assert.Equal(t, RouteLogin, r.Route())

	require.NoError(t, r.Fire(EventLoginFailed))
	assert.Equal(t, LoggedOut, r.State())

	require.NoError(t, r.Fire(EventLogin))
	assert.Equal(t, LoggedIn, r.State())
	assert.Equal(t, RouteDashboard, r.Route())

	assert.Error(t, r.Fire(EventLogin))
	assert.Equal(t, LoggedIn, r.State())

	require.NoError(t, r.Fire(EventSessionLost))
	assert.Equal(t, RouteLogin, r.Route())

	assert.Error(t, r.Fire(EventLogout))
	assert.Error(t, r.Fire(EventSessionLost))

	r = NewRouter(true)
	require.NoError(t, r.Fire(EventLogout))
	assert.Equal(t, LoggedOut, r.State())
	assert.Equal(t, "LoggedOut", r.State().String())
}
