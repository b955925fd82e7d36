package session

import (
	"github.com/qualitasnexus/nexctl/internal/log"
)

// LogoutOrchestrator centralizes the side effects of ending a session:
// clearing the store and sending the operator back to login. It is invoked
// by the user-facing logout command and by the request pipeline when the
// backend rejects the session. De-duplication of bursts lives in the
// pipeline's redirect gate, not here; the orchestrator itself is safe to
// call repeatedly.
type LogoutOrchestrator struct {
	store    *Store
	navigate func()
	logger   *log.Logger
}

// NewLogoutOrchestrator creates an orchestrator. navigate is the
// "redirect to login" action; in the CLI it tells the operator to
// re-authenticate. A nil navigate is allowed.
func NewLogoutOrchestrator(store *Store, navigate func(), logger *log.Logger) *LogoutOrchestrator {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &LogoutOrchestrator{store: store, navigate: navigate, logger: logger}
}

// Logout ends the session on user request.
func (o *LogoutOrchestrator) Logout() {
	o.store.Logout()
	if o.navigate != nil {
		o.navigate()
	}
}

// LogoutOnAuthError ends the session after the backend rejected it with
// the given status (401 or 403).
func (o *LogoutOrchestrator) LogoutOnAuthError(status int) {
	o.logger.Warn("session rejected by backend, logging out", "status", status)
	o.store.Logout()
	if o.navigate != nil {
		o.navigate()
	}
}
