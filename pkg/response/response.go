package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
)

// Envelope represents the common JSON response contract.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Data: data})
}

// Error sends a JSON error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// HTML renders a named page template. Pages carry per-user data so they are never cached.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	noStore(c)
	c.HTML(status, name, data)
}

// Redirect sends the browser to location. POST handlers use 303 so the follow-up is a GET.
func Redirect(c *gin.Context, location string) {
	status := http.StatusFound
	if c.Request != nil && c.Request.Method == http.MethodPost {
		status = http.StatusSeeOther
	}
	noStore(c)
	c.Redirect(status, location)
}

// Attachment streams a downloadable file.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
