package models

import (
	"encoding/json"
	"net/url"
	"strings"
)

// CallbackParams are the query parameters the provider flow lands on /oauth2/redirect with.
type CallbackParams struct {
	Code  string
	Error string
	State string
}

// ParseCallback extracts callback parameters from a query string.
func ParseCallback(query url.Values) CallbackParams {
	return CallbackParams{
		Code:  query.Get("code"),
		Error: query.Get("error"),
		State: query.Get("state"),
	}
}

type stateHint struct {
	From string `json:"from"`
}

// RedirectHint recovers the optional redirect origin carried in state. The
// state is URL-decoded then JSON-parsed; an empty result with a nil error means
// no hint was present.
func (p CallbackParams) RedirectHint() (string, error) {
	if p.State == "" {
		return "", nil
	}
	decoded, err := url.QueryUnescape(p.State)
	if err != nil {
		return "", err
	}
	var hint stateHint
	if err := json.Unmarshal([]byte(decoded), &hint); err != nil {
		return "", err
	}
	return strings.TrimSpace(hint.From), nil
}
