// Package session stores the server-side session records that make bearer
// tokens revocable. Every successful sign-in creates a record; sign-out flips
// its status from Enabled to Disabled exactly once. Records are never
// deleted, so the full device history of an identity stays queryable.
package session
