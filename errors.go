package auth

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called before a
	// successful Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrInvalidCredentials covers login/password mismatch and wrong TOTP
	// codes. The caller fixes the input and may retry.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionRevoked means the token is structurally valid but its session
	// has been terminated. The remediation is re-authentication, so it is a
	// distinct kind from ErrInvalidCredentials and ErrTokenInvalid.
	ErrSessionRevoked = errors.New("this session has been terminated")

	// ErrTokenInvalid covers malformed tokens, bad signatures, and wrong
	// issuer/audience. Never returned for a revoked session.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrSequenceViolation means a pipeline step ran before its precondition
	// step succeeded, e.g. binding an email before the authenticator code was
	// verified. This is a client programming error, not a retryable failure.
	ErrSequenceViolation = errors.New("pipeline step out of sequence")

	// ErrFlowNotFound means the registration/recovery flow id is unknown or
	// its record has expired.
	ErrFlowNotFound = errors.New("flow not found or expired")

	// ErrFlowAttemptsExceeded means the flow burned its code-verification
	// budget and is permanently failed.
	ErrFlowAttemptsExceeded = errors.New("flow verification attempts exceeded")

	// ErrVerificationFailed is the single answer to a failed recovery lookup.
	// Unknown contact, lookup error, and backend trouble all collapse into it
	// so the wire never confirms whether an account exists.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrRegistrationRejected means a pre-verification step (login taken,
	// bad registration code) declined the request before anything was created.
	ErrRegistrationRejected = errors.New("registration rejected")

	// ErrAuthenticatorNotConfigured means the identity has no enrolled TOTP
	// secret to verify against.
	ErrAuthenticatorNotConfigured = errors.New("authenticator not configured")

	// ErrRoleUnknown means a role value outside the closed
	// Student/Teacher/Administrator/Parent set was encountered.
	ErrRoleUnknown = errors.New("unknown role")

	// ErrValidation covers malformed input (email/phone format, empty login,
	// short password) rejected before any lookup or write.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable wraps Redis failures in the engine's own stores.
	ErrStoreUnavailable = errors.New("state store unavailable")

	// ErrProviderUnavailable wraps identity-provider failures that are not
	// plain not-found answers.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrIdentityNotFound is how IdentityProvider implementations must report
	// a lookup miss so the engine can tell misses from outages.
	ErrIdentityNotFound = errors.New("identity not found")
)
