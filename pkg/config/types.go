package config

import "time"

// RedirectRecord is one audit entry for a created redirect.
type RedirectRecord struct {
	LocalPort  int       // pool port the listener was bound on
	TargetPort int       // workspace port the traffic goes to
	URL        string    // external URL of the pool entry
	CreatedAt  time.Time
}
