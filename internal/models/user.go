package models

// User is the identity returned by the backend session introspection endpoint.
// Presence means authenticated; the portal attaches no further meaning to it.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// DisplayName prefers the provider name and falls back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" && u.Name != "Unknown" {
		return u.Name
	}
	return u.Email
}
