package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-admin/internal/event"
	"recipe-admin/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestStore(t *testing.T, persister Persister, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewStore(context.Background(), persister, opts...)
}

var admin = model.SessionUser{ID: "u-1", Username: "chef", Email: "chef@example.com", Role: model.RoleAdmin}

func TestLoginLogout(t *testing.T) {
	store := newTestStore(t, nil)
	assert.False(t, store.IsAuthenticated())

	token := signToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()})
	store.Login(admin, token)

	snap := store.Snapshot()
	require.True(t, snap.IsAuthenticated)
	assert.Equal(t, token, snap.Token)
	assert.Equal(t, "chef", snap.User.Username)

	store.Logout()
	snap = store.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)

	// logout is idempotent
	store.Logout()
	assert.False(t, store.IsAuthenticated())
}

func TestCheckTokenValidity(t *testing.T) {
	tests := []struct {
		name          string
		token         func(t *testing.T) string
		authenticated bool
	}{
		{
			name:          "future expiry keeps session",
			token:         func(t *testing.T) string { return signToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Minute).Unix()}) },
			authenticated: true,
		},
		{
			name:          "past expiry clears session",
			token:         func(t *testing.T) string { return signToken(t, jwt.MapClaims{"exp": fixedNow.Add(-time.Minute).Unix()}) },
			authenticated: false,
		},
		{
			name:          "missing expiry clears session",
			token:         func(t *testing.T) string { return signToken(t, jwt.MapClaims{"sub": "u-1"}) },
			authenticated: false,
		},
		{
			name:          "malformed token clears session",
			token:         func(t *testing.T) string { return "not-a-jwt" },
			authenticated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, nil)
			store.Login(admin, tt.token(t))

			assert.NotPanics(t, store.CheckTokenValidity)
			assert.Equal(t, tt.authenticated, store.IsAuthenticated())
			if !tt.authenticated {
				assert.Nil(t, store.User())
				assert.Empty(t, store.Token())
			}
		})
	}
}

func TestCheckTokenValidityWithoutToken(t *testing.T) {
	store := newTestStore(t, nil)
	store.CheckTokenValidity()
	assert.False(t, store.IsAuthenticated())
}

func TestRehydrateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	file, err := NewFilePersister(path)
	require.NoError(t, err)
	persister := Seal(file, "s3cret")

	token := signToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()})
	first := newTestStore(t, persister)
	first.Login(admin, token)

	reopened, err := NewFilePersister(path)
	require.NoError(t, err)
	second := newTestStore(t, Seal(reopened, "s3cret"))
	require.True(t, second.IsAuthenticated())
	assert.Equal(t, token, second.Token())
	assert.Equal(t, admin.Email, second.User().Email)
}

func TestRehydrateExpiredTokenLogsOut(t *testing.T) {
	persister := NewMemoryPersister()
	token := signToken(t, jwt.MapClaims{"exp": fixedNow.Add(-time.Hour).Unix()})
	first := NewStore(context.Background(), persister, WithClock(func() time.Time { return fixedNow.Add(-2 * time.Hour) }))
	first.Login(admin, token)

	second := newTestStore(t, persister)
	assert.False(t, second.IsAuthenticated())
	assert.Empty(t, second.Token())
}

func TestRehydrateWithWrongSecretStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	file, err := NewFilePersister(path)
	require.NoError(t, err)
	newTestStore(t, Seal(file, "right")).Login(admin, signToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()}))

	store := newTestStore(t, Seal(file, "wrong"))
	assert.False(t, store.IsAuthenticated())
}

func TestFilePersisterDelete(t *testing.T) {
	persister, err := NewFilePersister(filepath.Join(t.TempDir(), "nested", "state.json"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, persister.Save(ctx, StorageKey, []byte(`{"token":"x"}`)))

	data, err := persister.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"x"}`, string(data))

	require.NoError(t, persister.Delete(ctx, StorageKey))
	_, err = persister.Load(ctx, StorageKey)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestSessionEventsPublished(t *testing.T) {
	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	store := newTestStore(t, nil, WithBus(bus))
	store.Login(admin, signToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()}))
	store.Logout()

	assert.Equal(t, event.TypeSessionLogin, (<-events).Type)
	assert.Equal(t, event.TypeSessionLogout, (<-events).Type)
}

func TestStartExpiryTicker(t *testing.T) {
	now := fixedNow
	clock := func() time.Time { return now }
	store := NewStore(context.Background(), nil, WithClock(clock))
	store.Login(admin, signToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Second).Unix()}))

	now = fixedNow.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.StartExpiryTicker(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool { return !store.IsAuthenticated() }, time.Second, 5*time.Millisecond)
}

func TestSealedValuesAreNotPlaintext(t *testing.T) {
	inner := NewMemoryPersister()
	sealed := Seal(inner, "s3cret")
	ctx := context.Background()

	require.NoError(t, sealed.Save(ctx, StorageKey, []byte(`{"token":"abc"}`)))

	raw, err := inner.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abc")

	opened, err := sealed.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `{"token":"abc"}`, string(opened))

	assert.Same(t, inner, Seal(inner, "").(*MemoryPersister))
}
