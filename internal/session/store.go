package session

import (
	"sync"

	"github.com/qualitasnexus/nexctl/internal/log"
)

// State is the persisted subset of the session: tokens, the derived user
// profile and the authenticated flag. Permission data is deliberately
// excluded and refetched after every process start.
type State struct {
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
	User            *User  `json:"user,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Storage persists the session across CLI invocations.
type Storage interface {
	Load() (*State, error)
	Save(*State) error
	Clear() error
}

// Snapshot is an immutable copy of the full session state.
type Snapshot struct {
	AccessToken          string
	RefreshToken         string
	User                 *User
	IsAuthenticated      bool
	IsRefreshingToken    bool
	Permissions          []string
	IsLoadingPermissions bool
	PermissionError      error
}

// Store is the single source of truth for session state. Every component
// (login command, request pipeline, logout orchestrator, permission fetcher)
// reads and writes through it; subscribers are notified after each mutation.
type Store struct {
	mu sync.Mutex

	accessToken     string
	refreshToken    string
	user            *User
	isAuthenticated bool

	isRefreshingToken bool

	permissions          []string
	permissionSet        map[string]struct{}
	isLoadingPermissions bool
	permissionError      error

	hydrated bool

	storage  Storage
	logger   *log.Logger
	nextSub  int
	subs     map[int]func(Snapshot)
}

// NewStore creates an empty store backed by the given storage. The store
// starts unhydrated; call Hydrate to pick up a previously persisted session.
func NewStore(storage Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{
		storage: storage,
		logger:  logger,
		subs:    make(map[int]func(Snapshot)),
	}
}

// Hydrate loads persisted session state, if any. Missing or unreadable
// state leaves the store empty; that is not an error worth failing a
// command over, callers just end up unauthenticated.
func (s *Store) Hydrate() {
	if s.storage == nil {
		return
	}

	state, err := s.storage.Load()

	s.mu.Lock()
	s.hydrated = true
	if err != nil || state == nil {
		s.mu.Unlock()
		if err != nil {
			s.logger.Debug("no persisted session loaded", "reason", err.Error())
		}
		return
	}
	s.accessToken = state.AccessToken
	s.refreshToken = state.RefreshToken
	s.user = state.User
	s.isAuthenticated = state.IsAuthenticated
	s.mu.Unlock()

	s.notify()
}

// Hydrated reports whether Hydrate has run. The request pipeline uses this
// to decide whether to fall back to raw storage reads.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Login stores a freshly issued token pair and derives the user profile
// from the access token. It is total: a token that fails to decode still
// authenticates the session, with a nil profile. The backend accepted the
// credentials; the client does not second-guess that because it could not
// read the claims.
func (s *Store) Login(accessToken, refreshToken string) {
	user, err := DecodeUser(accessToken)
	if err != nil {
		s.logger.Warn("could not decode user from access token", "error", err.Error())
		user = nil
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = user
	s.isAuthenticated = true
	s.hydrated = true
	s.mu.Unlock()

	s.persist()
	s.notify()
}

// Logout clears every session field back to the pristine initial state.
func (s *Store) Logout() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.isAuthenticated = false
	s.isRefreshingToken = false
	s.permissions = nil
	s.permissionSet = nil
	s.isLoadingPermissions = false
	s.permissionError = nil
	s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.Clear(); err != nil {
			s.logger.Warn("could not clear persisted session", "error", err.Error())
		}
	}
	s.notify()
}

// SetPermissions replaces the permission set. Order is preserved for
// display; membership checks go through an index.
func (s *Store) SetPermissions(permissions []string) {
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}

	s.mu.Lock()
	s.permissions = append([]string(nil), permissions...)
	s.permissionSet = set
	s.mu.Unlock()

	s.notify()
}

// SetLoadingPermissions flags an in-flight permission fetch.
func (s *Store) SetLoadingPermissions(loading bool) {
	s.mu.Lock()
	s.isLoadingPermissions = loading
	s.mu.Unlock()
	s.notify()
}

// SetPermissionError records the outcome of the last permission fetch.
func (s *Store) SetPermissionError(err error) {
	s.mu.Lock()
	s.permissionError = err
	s.mu.Unlock()
	s.notify()
}

// SetRefreshingToken flags an in-flight token refresh cycle.
func (s *Store) SetRefreshingToken(refreshing bool) {
	s.mu.Lock()
	s.isRefreshingToken = refreshing
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		AccessToken:          s.accessToken,
		RefreshToken:         s.refreshToken,
		User:                 s.user,
		IsAuthenticated:      s.isAuthenticated,
		IsRefreshingToken:    s.isRefreshingToken,
		Permissions:          append([]string(nil), s.permissions...),
		IsLoadingPermissions: s.isLoadingPermissions,
		PermissionError:      s.permissionError,
	}
}

// Subscribe registers a callback invoked after every mutation with a fresh
// snapshot. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// persist writes the durable subset of session state. Persistence failure
// never fails the mutation that triggered it.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}

	s.mu.Lock()
	state := &State{
		AccessToken:     s.accessToken,
		RefreshToken:    s.refreshToken,
		User:            s.user,
		IsAuthenticated: s.isAuthenticated,
	}
	s.mu.Unlock()

	if err := s.storage.Save(state); err != nil {
		s.logger.Warn("could not persist session", "error", err.Error())
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if len(fns) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
