package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delrio-stay/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func mintToken(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func newCookieStore(t *testing.T) (*Store, *CookieStorage) {
	t.Helper()

	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	storage := NewCookieStorage(codec, CookieOptions{Name: "sid", TTL: time.Hour})
	return NewStore(storage, NewTokenDecoder("")), storage
}

// carryCookies builds the next request the browser would send.
func carryCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func clearedCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestStore_ExpiredTokenResolvesAnonymous(t *testing.T) {
	t.Parallel()

	store, storage := newCookieStore(t)
	expired := mintToken(t, jwt.MapClaims{"sub": "guest@delrio.com", "exp": time.Now().Add(-time.Minute).Unix()}, "k")

	rec := httptest.NewRecorder()
	require.NoError(t, storage.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), Values{
		KeyToken:    expired,
		KeyUserRole: "ROLE_ADMIN",
	}))

	next := httptest.NewRecorder()
	session := store.Resolve(next, carryCookies(rec))
	assert.Equal(t, model.SessionAnonymous, session.State)
	assert.False(t, session.IsAdmin())
	assert.True(t, clearedCookie(next, "sid"), "expired session must be wiped")
}

func TestStore_ResolveRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		claimRole string
		stored    string
		wantAdmin bool
	}{
		{name: "admin claim", claimRole: "ROLE_ADMIN", wantAdmin: true},
		{name: "user claim", claimRole: "ROLE_USER", wantAdmin: false},
		{name: "stored admin role", stored: "ROLE_ADMIN", wantAdmin: true},
		{name: "claim without prefix", claimRole: "admin", wantAdmin: true},
		{name: "unknown role", claimRole: "ROLE_OWNER", wantAdmin: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, _ := newCookieStore(t)
			claims := jwt.MapClaims{"sub": "a@delrio.com", "exp": time.Now().Add(time.Hour).Unix()}
			if tt.claimRole != "" {
				claims["role"] = tt.claimRole
			}

			rec := httptest.NewRecorder()
			_, err := store.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), mintToken(t, claims, "k"), Companions{Role: tt.stored})
			require.NoError(t, err)

			session := store.Resolve(httptest.NewRecorder(), carryCookies(rec))
			require.Equal(t, model.SessionAuthenticated, session.State)
			assert.Equal(t, tt.wantAdmin, session.IsAdmin())
			assert.Equal(t, "a@delrio.com", session.User.Email)
		})
	}
}

func TestStore_LoginFillsIdentityFromCompanions(t *testing.T) {
	t.Parallel()

	store, _ := newCookieStore(t)
	token := mintToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, "k")

	rec := httptest.NewRecorder()
	session, err := store.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), token, Companions{
		ID:        "42",
		Email:     "ana@delrio.com",
		FirstName: "Ana",
		LastName:  "Rio",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, session.User.Role)
	assert.Equal(t, "Ana Rio", session.User.DisplayName())

	resolved := store.Resolve(httptest.NewRecorder(), carryCookies(rec))
	assert.Equal(t, "42", resolved.User.ID)
	assert.Equal(t, "ana@delrio.com", resolved.User.Email)
}

func TestStore_LoginRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	store, _ := newCookieStore(t)

	tests := map[string]string{
		"garbage":     "not-a-jwt",
		"missing exp": mintToken(t, jwt.MapClaims{"sub": "a@delrio.com"}, "k"),
		"expired":     mintToken(t, jwt.MapClaims{"sub": "a@delrio.com", "exp": time.Now().Add(-time.Second).Unix()}, "k"),
		"no subject":  mintToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, "k"),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			session, err := store.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), token, Companions{})
			require.ErrorIs(t, err, model.ErrInvalidToken)
			assert.Equal(t, model.SessionAnonymous, session.State)
			assert.Empty(t, rec.Result().Cookies(), "nothing may be persisted")
		})
	}
}

func TestStore_LogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	store, _ := newCookieStore(t)
	token := mintToken(t, jwt.MapClaims{"sub": "a@delrio.com", "exp": time.Now().Add(time.Hour).Unix()}, "k")

	rec := httptest.NewRecorder()
	_, err := store.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), token, Companions{Role: "ROLE_ADMIN"})
	require.NoError(t, err)

	first := httptest.NewRecorder()
	require.NoError(t, store.Logout(first, carryCookies(rec)))
	assert.True(t, clearedCookie(first, "sid"))

	second := httptest.NewRecorder()
	require.NoError(t, store.Logout(second, carryCookies(first)))

	session := store.Resolve(httptest.NewRecorder(), carryCookies(second))
	assert.Equal(t, model.SessionAnonymous, session.State)
}

func TestStore_TamperedCookieResolvesAnonymous(t *testing.T) {
	t.Parallel()

	store, _ := newCookieStore(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "definitely-not-sealed"})

	rec := httptest.NewRecorder()
	session := store.Resolve(rec, req)
	assert.Equal(t, model.SessionAnonymous, session.State)
	assert.True(t, clearedCookie(rec, "sid"))
}

type brokenStorage struct{}

func (brokenStorage) Load(*http.Request) (Values, error) {
	return nil, errors.New("connection refused")
}

func (brokenStorage) Save(http.ResponseWriter, *http.Request, Values) error {
	return errors.New("connection refused")
}

func (brokenStorage) Clear(http.ResponseWriter, *http.Request) error {
	return errors.New("connection refused")
}

func TestStore_StorageFailureIsUnknown(t *testing.T) {
	t.Parallel()

	store := NewStore(brokenStorage{}, NewTokenDecoder(""))
	session := store.Resolve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, model.SessionUnknown, session.State)
	assert.False(t, session.IsResolved())
}

func TestTokenDecoder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	t.Run("exp equal to now is expired", func(t *testing.T) {
		decoder := NewTokenDecoder("")
		decoder.now = func() time.Time { return now }

		_, err := decoder.Decode(mintToken(t, jwt.MapClaims{"sub": "a@delrio.com", "exp": now.Unix()}, "k"))
		require.ErrorIs(t, err, model.ErrInvalidToken)

		claims, err := decoder.Decode(mintToken(t, jwt.MapClaims{"sub": "a@delrio.com", "exp": now.Unix() + 1, "id": 7}, "k"))
		require.NoError(t, err)
		assert.Equal(t, "7", claims.ID)
	})

	t.Run("signature checked when a secret is set", func(t *testing.T) {
		decoder := NewTokenDecoder("shared")
		decoder.now = func() time.Time { return now }
		require.True(t, decoder.Verifies())

		claims := jwt.MapClaims{"sub": "a@delrio.com", "exp": now.Add(time.Hour).Unix()}
		_, err := decoder.Decode(mintToken(t, claims, "shared"))
		require.NoError(t, err)

		_, err = decoder.Decode(mintToken(t, claims, "forged"))
		require.ErrorIs(t, err, model.ErrInvalidToken)
	})
}

func TestCodec(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	sealed, err := codec.Seal([]byte("hello"))
	require.NoError(t, err)

	opened, err := codec.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(opened))

	other, err := NewCodec(testSecret + "-rotated")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = NewCodec("")
	require.Error(t, err)

	csrfKey, err := DeriveKey(testSecret, "csrf")
	require.NoError(t, err)
	require.Len(t, csrfKey, 32)
	assert.NotEqual(t, codec.key[:], csrfKey)
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	now := time.Now()
	storage := NewMemoryStorage(codec, CookieOptions{Name: "sid", TTL: time.Minute})
	storage.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	require.NoError(t, storage.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), Values{KeyToken: "t"}))
	require.Equal(t, 1, storage.Len())

	values, err := storage.Load(carryCookies(rec))
	require.NoError(t, err)
	assert.Equal(t, "t", values[KeyToken])

	now = now.Add(2 * time.Minute)
	values, err = storage.Load(carryCookies(rec))
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Equal(t, 0, storage.Len())
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return c.Value
		}
	}
	return ""
}

func TestStore_LoginIssuesFreshSessionID(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret)
	require.NoError(t, err)
	storage := NewMemoryStorage(codec, CookieOptions{Name: "sid", TTL: time.Hour})
	store := NewStore(storage, NewTokenDecoder(""))

	// A session id handed out before sign in, then planted in another browser.
	planted := httptest.NewRecorder()
	require.NoError(t, storage.Save(planted, httptest.NewRequest(http.MethodGet, "/", nil), Values{"theme": "dark"}))
	require.NotEmpty(t, cookieValue(planted, "sid"))

	login := carryCookies(planted)
	token := mintToken(t, jwt.MapClaims{"sub": "admin@delrio.com", "exp": time.Now().Add(time.Hour).Unix()}, "k")
	rec := httptest.NewRecorder()
	_, err = store.Login(rec, login, token, Companions{Role: "ROLE_ADMIN"})
	require.NoError(t, err)

	assert.NotEqual(t, cookieValue(planted, "sid"), cookieValue(rec, "sid"))
	assert.Equal(t, 1, storage.Len(), "the planted id must be dropped")

	stale := store.Resolve(httptest.NewRecorder(), carryCookies(planted))
	assert.Equal(t, model.SessionAnonymous, stale.State)
	assert.False(t, stale.IsAdmin())

	fresh := store.Resolve(httptest.NewRecorder(), carryCookies(rec))
	assert.Equal(t, model.SessionAuthenticated, fresh.State)
	assert.True(t, fresh.IsAdmin())
}

func TestMemoryStorage_SweepsAbandonedSessions(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	storage := NewMemoryStorage(codec, CookieOptions{Name: "sid", TTL: time.Minute})
	storage.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.Save(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), Values{KeyToken: "t"}))
	}
	require.Equal(t, 3, storage.Len())

	// Nobody comes back for those three; a later visitor triggers the sweep.
	now = now.Add(time.Minute + memorySweepInterval)
	_, err = storage.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 0, storage.Len())

	require.NoError(t, storage.Save(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), Values{KeyToken: "t"}))
	assert.Equal(t, 1, storage.Len())
}
