package config

// Store persists per-port decisions and the redirect audit trail
// between sessions.
type Store interface {
	// Decision Operations
	SetDecision(port int, decision string) error
	Decision(port int) (string, bool)
	ClearDecision(port int) error
	Decisions() (map[int]string, error)

	// Redirect History
	AddRedirect(localPort, targetPort int, url string) error
	RedirectHistory() ([]RedirectRecord, error)

	Close() error
}

// NewStore creates the default store (SQLite).
func NewStore() (Store, error) {
	return NewSQLiteStore()
}
