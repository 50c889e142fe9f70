// Package auth is the authentication core of the MyJournal school platform:
// session-revocable bearer tokens, TOTP second-factor enrollment, and
// multi-channel account recovery.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// auth is the public surface. It exposes [Engine], [Builder], [Config], the
// error taxonomy, and value types (SignInResult, AuthenticatorSetup,
// SessionInfo, ...). Token signing lives in jwt/, credential hashing in
// password/, session records in session/.
//
// Identity persistence stays external: callers implement
// [IdentityProvider] over whatever database holds their accounts. The engine
// owns only the security state machine (sessions, in-flight
// registration/recovery flows, and registration codes), all of which lives in
// Redis.
//
// # Token model
//
// A bearer token alone never authorizes a request. Its signature proves
// issuance; the session id claim must additionally resolve to an Enabled
// session at request time. Sign-out therefore revokes tokens without any
// token-side state.
package auth
