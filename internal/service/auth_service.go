package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/browser"
	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/internal/repository"
	"github.com/noah-isme/sma-student-portal/pkg/config"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
)

type backendDoer interface {
	Do(ctx context.Context, credentials []*http.Cookie, req repository.BackendRequest, dest interface{}) (*repository.BackendResponse, error)
}

var providerPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// AuthService drives the provider login round trip and session introspection.
type AuthService struct {
	backend    backendDoer
	backendURL string
	config     config.AuthConfig
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewAuthService constructs an AuthService. backendURL is the origin hosting the
// provider authorization endpoints.
func NewAuthService(backend backendDoer, backendURL string, cfg config.AuthConfig, metrics *MetricsService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = "google"
	}
	return &AuthService{
		backend:    backend,
		backendURL: strings.TrimRight(backendURL, "/"),
		config:     cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// Login remembers where to return after sign-in and sends the browser to the
// provider's authorization endpoint on the backend.
func (s *AuthService) Login(ctx context.Context, b browser.Browser, provider, redirectTo string) error {
	if provider == "" {
		provider = s.config.DefaultProvider
	}
	provider = strings.ToLower(provider)
	if !providerPattern.MatchString(provider) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown login provider")
	}

	destination := SanitizeDestination(redirectTo)
	if err := b.Storage().Set(ctx, models.RedirectAfterLoginKey, destination); err != nil {
		// Navigation still happens; the callback then falls back to state or "/".
		s.logger.Warn("failed to persist post-login destination", zap.String("destination", destination), zap.Error(err))
	}

	s.metrics.RecordLoginRedirect()
	b.Navigate(s.backendURL + "/oauth2/authorization/" + url.PathEscape(provider))
	return nil
}

// RequireLogin starts the default provider login, returning to where the browser is now.
func (s *AuthService) RequireLogin(ctx context.Context, b browser.Browser) error {
	return s.Login(ctx, b, "", b.Location())
}

// CurrentUser asks the backend who owns the browser's session. A rejected
// session yields a nil user and no error.
func (s *AuthService) CurrentUser(ctx context.Context, b browser.Browser) (*models.User, error) {
	var user *models.User
	_, err := s.backend.Do(ctx, b.Credentials(), repository.BackendRequest{
		Method: http.MethodGet,
		Path:   "/api/user/me",
	}, &user)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotAuthenticated) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Logout ends the backend session and then sends the browser to the provider's
// logout page, regardless of whether the backend call succeeded.
func (s *AuthService) Logout(ctx context.Context, b browser.Browser) {
	_, err := s.backend.Do(ctx, b.Credentials(), repository.BackendRequest{
		Method:      http.MethodPost,
		Path:        "/logout",
		ContentType: "application/x-www-form-urlencoded",
	}, nil)
	if err != nil {
		s.logger.Warn("backend logout failed", zap.Error(err))
	}
	if err := b.Storage().Remove(ctx, models.RedirectAfterLoginKey); err != nil {
		s.logger.Debug("failed to clear post-login destination", zap.Error(err))
	}
	b.ExpireCredentials()
	b.Navigate(s.config.ProviderLogoutURL)
}

// CompleteCallback validates the provider's return and resolves where the
// browser should land. The session itself was established by the backend; this
// only confirms it exists.
func (s *AuthService) CompleteCallback(ctx context.Context, b browser.Browser, params models.CallbackParams) (string, *models.User, error) {
	if params.Error != "" {
		return "", nil, appErrors.Clone(appErrors.ErrOAuthProvider, "Authentication failed: "+params.Error)
	}
	if params.Code == "" {
		return "", nil, appErrors.ErrOAuthMissingCode
	}

	user, err := s.CurrentUser(ctx, b)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrOAuthSessionMissing.Code, appErrors.ErrOAuthSessionMissing.Status, appErrors.ErrOAuthSessionMissing.Message)
	}
	if user == nil {
		return "", nil, appErrors.ErrOAuthSessionMissing
	}

	destination := "/"
	stored, ok, err := b.Storage().Get(ctx, models.RedirectAfterLoginKey)
	if err != nil {
		s.logger.Warn("failed to read post-login destination", zap.Error(err))
	}
	switch {
	case ok && stored != "":
		destination = stored
	default:
		hint, err := params.RedirectHint()
		if err != nil {
			s.logger.Warn("ignoring malformed callback state", zap.String("state", params.State), zap.Error(err))
		} else if hint != "" {
			destination = hint
		}
	}

	if err := b.Storage().Remove(ctx, models.RedirectAfterLoginKey); err != nil {
		s.logger.Warn("failed to clear post-login destination", zap.Error(err))
	}

	return SanitizeDestination(destination), user, nil
}

// SanitizeDestination keeps post-login destinations on this origin. Anything
// that is not a relative path collapses to "/".
func SanitizeDestination(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return u.RequestURI()
}
