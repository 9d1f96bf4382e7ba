package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-student-portal/internal/browser"
	"github.com/noah-isme/sma-student-portal/internal/repository"
	"github.com/noah-isme/sma-student-portal/pkg/config"
)

// ContextBrowserKey is the gin context key storing the request's browser handle.
const ContextBrowserKey = "browser"

// BrowserFactory builds the browser handle for one request.
type BrowserFactory func(c *gin.Context) browser.Browser

// NewBrowserFactory selects client storage per cfg.Storage. The redis client is
// only consulted for the redis backend.
func NewBrowserFactory(cfg *config.Config, client *redis.Client) BrowserFactory {
	storageCfg := cfg.Storage
	sessionCookies := cfg.Backend.SessionCookies
	return func(c *gin.Context) browser.Browser {
		var store browser.Storage
		if storageCfg.Backend == config.StorageBackendRedis && client != nil {
			store = repository.NewRedisStorage(client, browser.EnsureID(c, storageCfg.CookieSecure), storageCfg.TTL)
		} else {
			store = browser.NewCookieStorage(c, storageCfg.Secret, storageCfg.TTL, storageCfg.CookieSecure)
		}
		return browser.NewGin(c, store, sessionCookies)
	}
}

// Browser attaches a browser handle to every request.
func Browser(factory BrowserFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextBrowserKey, factory(c))
		c.Next()
	}
}

// BrowserFrom returns the handle attached by Browser.
func BrowserFrom(c *gin.Context) browser.Browser {
	value, exists := c.Get(ContextBrowserKey)
	if !exists {
		return nil
	}
	b, _ := value.(browser.Browser)
	return b
}
