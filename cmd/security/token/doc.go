// Package token owns the session signing secret.
//
// It is the single place that reads the secret from the environment, so the
// HTTP layer, the session codec and startup checks agree on where it lives.
//
// Environment:
//   - Q2G_JWT_SECRET: the HMAC key used to sign session tokens.
//   - JWT_SECRET: accepted when Q2G_JWT_SECRET is unset, for older deployments.
//
// Policy:
//   - Callers that require a strong secret pass a minimum byte length
//     (32 in production) and refuse to start when it is not met.
package token
