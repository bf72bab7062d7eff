// Package session issues and verifies the signed session tokens that
// authenticate requests after login.
//
// Tokens are HS256 JWTs carrying the account id, email and role. They are
// self-contained: there is no server-side session table, so logout only
// clears the client cookie and a token stays valid until it expires.
//
// Transport (cookie handling) lives in the HTTP layer.
package session
