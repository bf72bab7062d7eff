// Package account implements Quest2Go's account persistence.
//
// It owns the Account record, the role-specific profile extensions (Educator,
// Researcher) and the Store boundary used by the HTTP layer. Two stores are
// provided: PostgresStore for deployments and MemoryStore for local runs and tests.
//
// Password hashes are stored as opaque strings; hashing lives in security/password.
package account
