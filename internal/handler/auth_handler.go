package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-student-portal/internal/middleware"
	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/internal/service"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
	"github.com/noah-isme/sma-student-portal/pkg/response"
)

var providerErrorMessages = map[string]string{
	"unauthorized_email": "This email address is not authorised to use the portal.",
	"access_denied":      "Sign-in was cancelled.",
}

// AuthHandler wires the sign-in round trip to the auth service.
type AuthHandler struct {
	service         *service.AuthService
	defaultProvider string
	errorDelay      time.Duration
}

// NewAuthHandler creates a new handler. errorDelay is how long the callback
// error page waits before returning to sign-in.
func NewAuthHandler(svc *service.AuthService, defaultProvider string, errorDelay time.Duration) *AuthHandler {
	if defaultProvider == "" {
		defaultProvider = "google"
	}
	if errorDelay <= 0 {
		errorDelay = 3 * time.Second
	}
	return &AuthHandler{service: svc, defaultProvider: defaultProvider, errorDelay: errorDelay}
}

// LoginPage godoc
// @Summary Sign-in page
// @Description Shows the provider sign-in link, the page the user came from and any provider error
// @Tags Authentication
// @Produce html
// @Param from query string false "Path to return to after sign-in"
// @Param error query string false "Provider error code"
// @Success 200 {string} string "HTML page"
// @Router /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	data := gin.H{
		"From":     service.SanitizeDestination(c.Query("from")),
		"Provider": h.defaultProvider,
	}
	if code := c.Query("error"); code != "" {
		message, ok := providerErrorMessages[code]
		if !ok {
			message = "Sign-in failed: " + code
		}
		data["Error"] = message
	}
	response.HTML(c, http.StatusOK, "login.html", page(c, "Sign in", data))
}

// Login godoc
// @Summary Start provider sign-in
// @Description Remembers the destination and redirects to the backend's authorization endpoint
// @Tags Authentication
// @Param provider path string true "Identity provider" default(google)
// @Param redirect query string false "Destination after sign-in"
// @Param from query string false "Alias of redirect"
// @Success 302
// @Failure 400 {string} string "HTML page"
// @Router /login/{provider} [get]
func (h *AuthHandler) Login(c *gin.Context) {
	destination := c.Query("redirect")
	if destination == "" {
		destination = c.Query("from")
	}

	if err := h.service.Login(c.Request.Context(), middleware.BrowserFrom(c), c.Param("provider"), destination); err != nil {
		appErr := appErrors.FromError(err)
		response.HTML(c, appErr.Status, "login.html", page(c, "Sign in", gin.H{
			"From":     service.SanitizeDestination(destination),
			"Provider": h.defaultProvider,
			"Error":    appErr.Message,
		}))
	}
}

// Callback godoc
// @Summary Complete provider sign-in
// @Description Confirms the backend session and redirects to the remembered destination
// @Tags Authentication
// @Param code query string false "Authorization code"
// @Param error query string false "Provider error"
// @Param state query string false "Opaque state, may carry {\"from\": path}"
// @Success 302
// @Failure 400 {string} string "HTML page"
// @Failure 401 {string} string "HTML page"
// @Router /oauth2/redirect [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	params := models.ParseCallback(c.Request.URL.Query())

	destination, user, err := h.service.CompleteCallback(ctx, middleware.BrowserFrom(c), params)
	if err != nil {
		if ctx.Err() != nil {
			c.Abort()
			return
		}
		appErr := appErrors.FromError(err)
		seconds := int(h.errorDelay.Round(time.Second) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		response.HTML(c, appErr.Status, "oauth_error.html", page(c, "Sign-in failed", gin.H{
			"Message":      appErr.Message,
			"RefreshAfter": seconds,
		}))
		return
	}

	c.Set(middleware.ContextUserKey, user)
	middleware.MarkAudited(c, map[string]interface{}{"destination": destination})
	response.Redirect(c, destination)
}

// Unauthorized godoc
// @Summary Not-authorised page
// @Tags Authentication
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /unauthorized [get]
func (h *AuthHandler) Unauthorized(c *gin.Context) {
	response.HTML(c, http.StatusOK, "unauthorized.html", page(c, "Not authorised", nil))
}

// Logout godoc
// @Summary Sign out
// @Description Ends the backend session and redirects to the provider's logout page
// @Tags Authentication
// @Success 303
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), middleware.BrowserFrom(c))
	middleware.MarkAudited(c, nil)
}
