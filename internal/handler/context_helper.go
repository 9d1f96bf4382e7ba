package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-student-portal/internal/middleware"
)

// page assembles template data shared by every view.
func page(c *gin.Context, title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	if _, ok := data["User"]; !ok {
		data["User"] = middleware.UserFrom(c)
	}
	return data
}

// navigated reports whether the browser was already sent elsewhere during this request.
func navigated(c *gin.Context) bool {
	b := middleware.BrowserFrom(c)
	if b == nil {
		return c.Writer.Written()
	}
	_, ok := b.Navigated()
	return ok
}
