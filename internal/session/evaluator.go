package session

// Read-side permission queries. Every call evaluates against the current
// store state; there is no caching layer on top.

// HasPermission reports whether the session has been granted p.
func (s *Store) HasPermission(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.permissionSet[p]
	return ok
}

// HasAnyPermission reports whether at least one of ps is granted.
func (s *Store) HasAnyPermission(ps ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		if _, ok := s.permissionSet[p]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of ps is granted.
func (s *Store) HasAllPermissions(ps ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		if _, ok := s.permissionSet[p]; !ok {
			return false
		}
	}
	return true
}

// Permissions returns a copy of the granted permission list in the order
// the backend returned it.
func (s *Store) Permissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.permissions...)
}

// IsLoadingPermissions reports whether a permission fetch is in flight.
func (s *Store) IsLoadingPermissions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoadingPermissions
}
