// Package internal holds identifier and code generation helpers shared by
// the authentication engine. Nothing here is part of the public API.
package internal
