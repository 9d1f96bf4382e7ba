package browser

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
)

// Gin adapts a gin request to Browser. Navigation is an HTTP redirect.
type Gin struct {
	c              *gin.Context
	storage        Storage
	sessionCookies []string

	mu        sync.Mutex
	navigated string
}

// NewGin wraps c. sessionCookies names the cookies forwarded upstream; when
// empty every inbound cookie is forwarded.
func NewGin(c *gin.Context, storage Storage, sessionCookies []string) *Gin {
	return &Gin{c: c, storage: storage, sessionCookies: sessionCookies}
}

func (b *Gin) Credentials() []*http.Cookie {
	if len(b.sessionCookies) == 0 {
		return b.c.Request.Cookies()
	}
	cookies := make([]*http.Cookie, 0, len(b.sessionCookies))
	for _, name := range b.sessionCookies {
		if cookie, err := b.c.Request.Cookie(name); err == nil {
			cookies = append(cookies, cookie)
		}
	}
	return cookies
}

func (b *Gin) Storage() Storage {
	return b.storage
}

// Location is the page the browser is showing. For form submissions that is the
// same-origin referring page, since the submit target itself may have no GET view.
func (b *Gin) Location() string {
	req := b.c.Request
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return req.URL.RequestURI()
	}
	ref, err := url.Parse(req.Referer())
	if err != nil || ref.Host != req.Host || ref.Path == "" {
		return "/"
	}
	return ref.RequestURI()
}

func (b *Gin) Navigate(location string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.navigated != "" {
		return
	}
	b.navigated = location

	status := http.StatusFound
	if b.c.Request.Method == http.MethodPost {
		status = http.StatusSeeOther
	}
	b.c.Header("Cache-Control", "no-store")
	b.c.Redirect(status, location)
	b.c.Abort()
}

func (b *Gin) Navigated() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.navigated, b.navigated != ""
}

func (b *Gin) ExpireCredentials() {
	for _, cookie := range b.Credentials() {
		http.SetCookie(b.c.Writer, &http.Cookie{
			Name:     cookie.Name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}
