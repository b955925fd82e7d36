package session

import (
	"github.com/qualitasnexus/nexctl/internal/errors"
)

// GuardState tracks whether the authentication check has run yet.
type GuardState int

const (
	// GuardChecking means the check has not completed; nothing protected
	// may be shown in this state.
	GuardChecking GuardState = iota
	// GuardSettled means the check ran and the outcome is known.
	GuardSettled
)

// Guard gates protected commands on an authenticated session. Until the
// check settles nothing is rendered; an unauthenticated session triggers
// the redirect action and the protected body never runs.
type Guard struct {
	store      *Store
	onRedirect func()
	state      GuardState
}

// NewGuard creates a guard over the store. onRedirect runs when the check
// finds no authenticated session; nil is allowed.
func NewGuard(store *Store, onRedirect func()) *Guard {
	return &Guard{store: store, onRedirect: onRedirect}
}

// State returns the guard's current state.
func (g *Guard) State() GuardState {
	return g.state
}

// Check settles the guard. It returns nil when the session is
// authenticated, otherwise it fires the redirect action and returns a
// not-logged-in error for the command runner to surface.
func (g *Guard) Check() error {
	snap := g.store.Snapshot()
	g.state = GuardSettled

	if !snap.IsAuthenticated || snap.AccessToken == "" {
		if g.onRedirect != nil {
			g.onRedirect()
		}
		return errors.NewNotLoggedInError()
	}
	return nil
}
