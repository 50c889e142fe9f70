// Package password hashes and verifies account credentials with Argon2id.
// Hashes are encoded in PHC string format so parameters travel with the hash
// and can be tightened without invalidating stored credentials.
package password
