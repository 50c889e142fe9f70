// Package jwt issues and verifies the bearer tokens handed out at sign-in.
//
// Tokens are signed with HMAC-SHA256 over a server-held secret and carry the
// account login, identity id, role, and session id. They carry no credential
// material: possession of a token proves a past sign-in, and
// the session id claim is what later revocation checks key on. A token that
// parses here is still not sufficient to authorize a request; the session it
// names must also be enabled.
package jwt
