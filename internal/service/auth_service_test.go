package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/browser/browsertest"
	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/pkg/config"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
)

const testBackendURL = "http://localhost:8080"

func newAuthServiceForTest(backend *fakeBackend) *AuthService {
	return NewAuthService(backend, testBackendURL, config.AuthConfig{
		DefaultProvider:   "google",
		ProviderLogoutURL: "https://mail.google.com/mail/logout",
	}, NewMetricsService(), zap.NewNop())
}

func storedDestination(t *testing.T, b *browsertest.Recorder) (string, bool) {
	t.Helper()
	v, ok, err := b.Store.Get(context.Background(), models.RedirectAfterLoginKey)
	require.NoError(t, err)
	return v, ok
}

func TestAuthServiceLogin(t *testing.T) {
	svc := newAuthServiceForTest(newFakeBackend())
	b := browsertest.NewRecorder("/login")

	require.NoError(t, svc.Login(context.Background(), b, "", "/dashboard"))

	dest, ok := storedDestination(t, b)
	assert.True(t, ok)
	assert.Equal(t, "/dashboard", dest)
	assert.Equal(t, []string{"http://localhost:8080/oauth2/authorization/google"}, b.Navigations())
}

func TestAuthServiceLoginDefaultsDestination(t *testing.T) {
	svc := newAuthServiceForTest(newFakeBackend())
	b := browsertest.NewRecorder("/login")

	require.NoError(t, svc.Login(context.Background(), b, "GitHub", ""))

	dest, _ := storedDestination(t, b)
	assert.Equal(t, "/", dest)
	assert.Equal(t, []string{"http://localhost:8080/oauth2/authorization/github"}, b.Navigations())
}

func TestAuthServiceLoginRejectsOddProvider(t *testing.T) {
	svc := newAuthServiceForTest(newFakeBackend())
	b := browsertest.NewRecorder("/login")

	err := svc.Login(context.Background(), b, "../admin", "/")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, b.Navigations())
}

func TestAuthServiceLoginNavigatesWhenStorageFails(t *testing.T) {
	svc := newAuthServiceForTest(newFakeBackend())
	b := browsertest.NewRecorder("/login")
	b.Store.Err = errors.New("storage unavailable")

	require.NoError(t, svc.Login(context.Background(), b, "", "/dashboard"))
	assert.Len(t, b.Navigations(), 1)
}

func TestAuthServiceRequireLoginUsesCurrentLocation(t *testing.T) {
	svc := newAuthServiceForTest(newFakeBackend())
	b := browsertest.NewRecorder("/students/7/edit?tab=1")

	require.NoError(t, svc.RequireLogin(context.Background(), b))

	dest, _ := storedDestination(t, b)
	assert.Equal(t, "/students/7/edit?tab=1", dest)
}

func TestAuthServiceCurrentUser(t *testing.T) {
	backend := newFakeBackend().on(http.MethodGet, "/api/user/me", fakeResponse{body: `{"name":"Asha","email":"asha@example.com"}`})
	svc := newAuthServiceForTest(backend)
	cookie := &http.Cookie{Name: "JSESSIONID", Value: "abc"}

	user, err := svc.CurrentUser(context.Background(), browsertest.NewRecorder("/", cookie))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, []*http.Cookie{cookie}, backend.credentials[0])
}

func TestAuthServiceCurrentUserRejected(t *testing.T) {
	backend := newFakeBackend().on(http.MethodGet, "/api/user/me", fakeResponse{err: appErrors.ErrNotAuthenticated})
	svc := newAuthServiceForTest(backend)

	user, err := svc.CurrentUser(context.Background(), browsertest.NewRecorder("/"))
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthServiceCurrentUserNullBody(t *testing.T) {
	backend := newFakeBackend().on(http.MethodGet, "/api/user/me", fakeResponse{body: `null`})
	svc := newAuthServiceForTest(backend)

	user, err := svc.CurrentUser(context.Background(), browsertest.NewRecorder("/"))
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthServiceCurrentUserUpstreamFailure(t *testing.T) {
	backend := newFakeBackend().on(http.MethodGet, "/api/user/me", fakeResponse{err: appErrors.ErrUpstreamUnavailable})
	svc := newAuthServiceForTest(backend)

	_, err := svc.CurrentUser(context.Background(), browsertest.NewRecorder("/"))
	assert.ErrorIs(t, err, appErrors.ErrUpstreamUnavailable)
}

func TestAuthServiceLogout(t *testing.T) {
	backend := newFakeBackend().on(http.MethodPost, "/logout", fakeResponse{})
	svc := newAuthServiceForTest(backend)
	b := browsertest.NewRecorder("/")

	svc.Logout(context.Background(), b)

	calls := backend.callsTo("/logout")
	require.Len(t, calls, 1)
	assert.Equal(t, "application/x-www-form-urlencoded", calls[0].ContentType)
	assert.Nil(t, calls[0].Body)
	assert.True(t, b.Expired)
	assert.Equal(t, []string{"https://mail.google.com/mail/logout"}, b.Navigations())
}

func TestAuthServiceLogoutNavigatesOnFailure(t *testing.T) {
	backend := newFakeBackend().on(http.MethodPost, "/logout", fakeResponse{err: appErrors.ErrUpstreamUnavailable})
	svc := newAuthServiceForTest(backend)
	b := browsertest.NewRecorder("/")

	svc.Logout(context.Background(), b)

	assert.Equal(t, []string{"https://mail.google.com/mail/logout"}, b.Navigations())
}

func TestAuthServiceCompleteCallback(t *testing.T) {
	user := `{"name":"Asha","email":"asha@example.com"}`

	cases := []struct {
		name     string
		params   models.CallbackParams
		marker   string
		backend  fakeResponse
		wantDest string
		wantErr  *appErrors.Error
		wantMsg  string
	}{
		{name: "provider error", params: models.CallbackParams{Error: "access_denied"}, wantErr: appErrors.ErrOAuthProvider, wantMsg: "Authentication failed: access_denied"},
		{name: "missing code", params: models.CallbackParams{}, wantErr: appErrors.ErrOAuthMissingCode},
		{name: "no user", params: models.CallbackParams{Code: "c"}, backend: fakeResponse{body: "null"}, wantErr: appErrors.ErrOAuthSessionMissing},
		{name: "session rejected", params: models.CallbackParams{Code: "c"}, backend: fakeResponse{err: appErrors.ErrNotAuthenticated}, wantErr: appErrors.ErrOAuthSessionMissing},
		{name: "backend down", params: models.CallbackParams{Code: "c"}, backend: fakeResponse{err: appErrors.ErrUpstreamUnavailable}, wantErr: appErrors.ErrOAuthSessionMissing},
		{name: "stored marker wins", params: models.CallbackParams{Code: "c", State: `{"from":"/other"}`}, marker: "/dashboard", backend: fakeResponse{body: user}, wantDest: "/dashboard"},
		{name: "state hint", params: models.CallbackParams{Code: "c", State: "%7B%22from%22%3A%22%2Fstudents%22%7D"}, backend: fakeResponse{body: user}, wantDest: "/students"},
		{name: "malformed state", params: models.CallbackParams{Code: "c", State: "not-json"}, backend: fakeResponse{body: user}, wantDest: "/"},
		{name: "default", params: models.CallbackParams{Code: "c"}, backend: fakeResponse{body: user}, wantDest: "/"},
		{name: "offsite marker", params: models.CallbackParams{Code: "c"}, marker: "https://evil.example", backend: fakeResponse{body: user}, wantDest: "/"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := newFakeBackend().on(http.MethodGet, "/api/user/me", tc.backend)
			svc := newAuthServiceForTest(backend)
			b := browsertest.NewRecorder("/oauth2/redirect")
			if tc.marker != "" {
				require.NoError(t, b.Store.Set(context.Background(), models.RedirectAfterLoginKey, tc.marker))
			}

			dest, u, err := svc.CompleteCallback(context.Background(), b, tc.params)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				if tc.wantMsg != "" {
					assert.Equal(t, tc.wantMsg, appErrors.FromError(err).Message)
				}
				assert.Nil(t, u)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantDest, dest)
			require.NotNil(t, u)
			_, ok := storedDestination(t, b)
			assert.False(t, ok, "marker must be cleared")
		})
	}
}

func TestSanitizeDestination(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/":                     "/",
		"/dashboard":            "/dashboard",
		"/students?page=2":      "/students?page=2",
		"//evil.example/path":   "/",
		"/\\evil.example":       "/",
		"https://evil.example/": "/",
		"dashboard":             "/",
		"  /padded  ":           "/padded",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeDestination(in), "input %q", in)
	}
}
