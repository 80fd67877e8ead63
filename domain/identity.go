package domain

import "time"

// IdentityRecord is a snapshot of an identity-provider account. The
// provider is the sole source of truth; no local user table exists, and
// lookups for ids embedded in tasks, activities, and payments may return
// not-found once the account has been deleted.
type IdentityRecord struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`

	// Demo marks an app-store review account. Demo accounts bypass
	// location verification; the bypass is always tagged in the audit
	// payload so it stays distinguishable from a real verified check-in.
	Demo bool `json:"demo,omitempty"`

	FetchedAt time.Time `json:"fetched_at,omitempty"`
}
