package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "storage-secret"

func newContext(method, target string, cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	for _, cookie := range cookies {
		c.Request.AddCookie(cookie)
	}
	return c, rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestCookieStorageRoundTrip(t *testing.T) {
	ctx := context.Background()

	c, rec := newContext(http.MethodGet, "/login/google")
	store := NewCookieStorage(c, testSecret, time.Minute, false)
	require.NoError(t, store.Set(ctx, "redirectAfterLogin", "/dashboard"))

	value, ok, err := store.Get(ctx, "redirectAfterLogin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/dashboard", value)

	cookie := responseCookie(rec, "portal_redirectAfterLogin")
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.NotContains(t, cookie.Value, "/dashboard")

	next, nextRec := newContext(http.MethodGet, "/oauth2/redirect", &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	nextStore := NewCookieStorage(next, testSecret, time.Minute, false)
	value, ok, err = nextStore.Get(ctx, "redirectAfterLogin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/dashboard", value)

	require.NoError(t, nextStore.Remove(ctx, "redirectAfterLogin"))
	_, ok, _ = nextStore.Get(ctx, "redirectAfterLogin")
	assert.False(t, ok)

	cleared := responseCookie(nextRec, "portal_redirectAfterLogin")
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestCookieStorageRejectsForeignValues(t *testing.T) {
	ctx := context.Background()

	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, NewCookieStorage(c, testSecret, time.Minute, false).Set(ctx, "flash", "saved"))
	signed := responseCookie(rec, "portal_flash").Value

	tests := []struct {
		name   string
		secret string
		cookie *http.Cookie
	}{
		{name: "wrong secret", secret: "other", cookie: &http.Cookie{Name: "portal_flash", Value: signed}},
		{name: "tampered", secret: testSecret, cookie: &http.Cookie{Name: "portal_flash", Value: signed + "x"}},
		{name: "plain value", secret: testSecret, cookie: &http.Cookie{Name: "portal_flash", Value: "saved"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := newContext(http.MethodGet, "/", tt.cookie)
			_, ok, err := NewCookieStorage(next, tt.secret, time.Minute, false).Get(ctx, "flash")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCookieStorageRejectsValueMovedToAnotherKey(t *testing.T) {
	ctx := context.Background()

	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, NewCookieStorage(c, testSecret, time.Minute, false).Set(ctx, "flash", "/elsewhere"))
	signed := responseCookie(rec, "portal_flash").Value

	next, _ := newContext(http.MethodGet, "/", &http.Cookie{Name: "portal_redirectAfterLogin", Value: signed})
	_, ok, err := NewCookieStorage(next, testSecret, time.Minute, false).Get(ctx, "redirectAfterLogin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieStorageExpiredValue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, storageClaims{
		Value: "/dashboard",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "redirectAfterLogin",
			ExpiresAt: jwt.NewNumericDate(past),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	c, _ := newContext(http.MethodGet, "/", &http.Cookie{Name: "portal_redirectAfterLogin", Value: signed})
	_, ok, err := NewCookieStorage(c, testSecret, time.Minute, false).Get(context.Background(), "redirectAfterLogin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieStorageWithoutSecret(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	err := NewCookieStorage(c, "", time.Minute, false).Set(context.Background(), "flash", "x")
	assert.Error(t, err)
}

func TestCookieName(t *testing.T) {
	assert.Equal(t, "portal_editToken_7", cookieName("editToken_7"))
	assert.Equal(t, "portal_editToken_R_7", cookieName("editToken:R 7"))
}

func TestGinCredentials(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/",
		&http.Cookie{Name: "JSESSIONID", Value: "abc"},
		&http.Cookie{Name: "portal_flash", Value: "x"},
	)

	named := NewGin(c, nil, []string{"JSESSIONID", "SESSION"}).Credentials()
	require.Len(t, named, 1)
	assert.Equal(t, "abc", named[0].Value)

	all := NewGin(c, nil, nil).Credentials()
	assert.Len(t, all, 2)
}

func TestGinNavigateFirstWins(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/students/7/edit?tab=1")
	b := NewGin(c, nil, nil)

	assert.Equal(t, "/students/7/edit?tab=1", b.Location())
	_, ok := b.Navigated()
	assert.False(t, ok)

	b.Navigate("http://backend/oauth2/authorization/google")
	b.Navigate("/login")

	location, ok := b.Navigated()
	assert.True(t, ok)
	assert.Equal(t, "http://backend/oauth2/authorization/google", location)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://backend/oauth2/authorization/google", rec.Header().Get("Location"))
}

func TestGinNavigateAfterPost(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/logout")
	NewGin(c, nil, nil).Navigate("https://mail.google.com/mail/logout")
	// A POST redirect has no body, so the status is only flushed here.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://mail.google.com/mail/logout", rec.Header().Get("Location"))
}

func TestGinLocationForSubmissions(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{name: "same origin form page", referer: "http://example.com/students/7/edit?tab=1", want: "/students/7/edit?tab=1"},
		{name: "foreign referer", referer: "https://evil.test/students/7/edit", want: "/"},
		{name: "no referer", want: "/"},
		{name: "garbage referer", referer: "::not a url", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/students/7")
			if tt.referer != "" {
				c.Request.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, NewGin(c, nil, nil).Location())
		})
	}
}

func TestGinExpireCredentials(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/logout", &http.Cookie{Name: "JSESSIONID", Value: "abc"})
	NewGin(c, nil, []string{"JSESSIONID"}).ExpireCredentials()

	cookie := responseCookie(rec, "JSESSIONID")
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestEnsureID(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	id := EnsureID(c, false)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotNil(t, responseCookie(rec, "portal_bid"))

	again, againRec := newContext(http.MethodGet, "/", &http.Cookie{Name: "portal_bid", Value: id})
	assert.Equal(t, id, EnsureID(again, false))
	assert.Nil(t, responseCookie(againRec, "portal_bid"))

	bogus, _ := newContext(http.MethodGet, "/", &http.Cookie{Name: "portal_bid", Value: "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", EnsureID(bogus, false))
}
