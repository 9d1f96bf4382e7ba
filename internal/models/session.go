package models

// GateState is the observable state of the session gate for one navigation.
type GateState string

const (
	GateChecking        GateState = "checking"
	GateAuthenticated   GateState = "authenticated"
	GateUnauthenticated GateState = "unauthenticated"
)

// GateResult is the outcome of a session check. Stale marks a check whose
// owning request went away before the backend answered; its result must not
// be acted on.
type GateResult struct {
	State GateState
	User  *User
	Stale bool
}

// RedirectAfterLoginKey names the browser storage entry holding the post-login destination.
const RedirectAfterLoginKey = "redirectAfterLogin"
