package browser

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const idCookie = CookiePrefix + "bid"

// EnsureID returns the stable browser id used to key server-side storage,
// issuing one on first contact.
func EnsureID(c *gin.Context, secure bool) string {
	if id, err := c.Cookie(idCookie); err == nil {
		if _, perr := uuid.Parse(id); perr == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(idCookie, id, 0, "/", "", secure, true)
	return id
}
