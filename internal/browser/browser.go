// Package browser models the client driving a request: the session credentials
// it carries, its client-side storage, and top-level navigation.
package browser

import (
	"context"
	"net/http"
)

// Storage is a browser-scoped key/value store that survives full-page redirects.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Browser is the portal's handle on the client behind the current request.
type Browser interface {
	// Credentials are the session cookies forwarded on credentialed backend calls.
	Credentials() []*http.Cookie
	Storage() Storage
	// Location is the current path and query.
	Location() string
	// Navigate sends the browser to location. Only the first call per request takes effect.
	Navigate(location string)
	// Navigated reports the pending navigation, if any.
	Navigated() (string, bool)
	// ExpireCredentials drops the forwarded session cookies from the browser.
	ExpireCredentials()
}
