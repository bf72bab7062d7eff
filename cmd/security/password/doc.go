// Package password hashes and verifies account passwords with bcrypt.
//
// Digests are standard modular-crypt strings ("$2a$10$..."), so the salt and
// cost travel with the hash and older digests keep verifying after the
// configured cost changes.
//
// Digests read back from storage are treated as untrusted input: Verify
// never errors or panics on malformed values, it only reports a mismatch.
package password
