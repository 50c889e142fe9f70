package auth

import "context"

// Role is the closed set of account roles in the school platform.
type Role string

const (
	RoleStudent       Role = "Student"
	RoleTeacher       Role = "Teacher"
	RoleAdministrator Role = "Administrator"
	RoleParent        Role = "Parent"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdministrator, RoleParent:
		return true
	}
	return false
}

// Client is the originating client descriptor recorded on every session.
type Client string

const (
	ClientWindows Client = "Windows"
	ClientLinux   Client = "Linux"
	ClientChrome  Client = "Chrome"
	ClientOpera   Client = "Opera"
	ClientEdge    Client = "Edge"
	ClientFirefox Client = "Firefox"
	ClientSafari  Client = "Safari"
	ClientUnknown Client = "Unknown"
)

// IdentityRecord is the account record exchanged with [IdentityProvider].
// AuthenticatorSecret is the raw TOTP secret; it is empty until enrollment
// and overwritten on re-enrollment.
type IdentityRecord struct {
	ID                  string
	Login               string
	PasswordHash        string
	Role                Role
	Email               string
	Phone               string
	AuthenticatorSecret []byte
}

// CreateIdentityInput is the input for [IdentityProvider.Create]. Contact
// fields and the authenticator secret are bound later by the registration
// pipeline.
type CreateIdentityInput struct {
	Login        string
	PasswordHash string
	Role         Role
}

// IdentityProvider is the contract callers implement over their account
// database. Lookup misses must be reported as [ErrIdentityNotFound] (possibly
// wrapped); any other error is treated as a backend outage.
//
// Phone lookups receive the percent-encoded form of the number, the same
// encoding the transport layer uses.
type IdentityProvider interface {
	GetByID(ctx context.Context, id string) (IdentityRecord, error)
	GetByLogin(ctx context.Context, login string) (IdentityRecord, error)
	GetByEmail(ctx context.Context, email string) (IdentityRecord, error)
	GetByPhone(ctx context.Context, encodedPhone string) (IdentityRecord, error)
	Create(ctx context.Context, input CreateIdentityInput) (IdentityRecord, error)
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error
	SetAuthenticatorSecret(ctx context.Context, id string, secret []byte) error
	SetEmail(ctx context.Context, id string, email string) error
	SetPhone(ctx context.Context, id string, phone string) error
}

// AuthorizedIdentity is the role-discriminated result of a credentials
// sign-in. Exactly one variant exists per role; callers switch on the
// concrete type instead of inspecting a role field.
type AuthorizedIdentity interface {
	// Role returns the discriminant of the variant.
	Role() Role
}

// StudentIdentity is the Student variant of [AuthorizedIdentity].
type StudentIdentity struct {
	ID    string
	Login string
	Email string
	Phone string
}

// TeacherIdentity is the Teacher variant of [AuthorizedIdentity].
type TeacherIdentity struct {
	ID    string
	Login string
	Email string
	Phone string
}

// AdministratorIdentity is the Administrator variant of [AuthorizedIdentity].
type AdministratorIdentity struct {
	ID    string
	Login string
	Email string
	Phone string
}

// ParentIdentity is the Parent variant of [AuthorizedIdentity].
type ParentIdentity struct {
	ID    string
	Login string
	Email string
	Phone string
}

func (StudentIdentity) Role() Role       { return RoleStudent }
func (TeacherIdentity) Role() Role       { return RoleTeacher }
func (AdministratorIdentity) Role() Role { return RoleAdministrator }
func (ParentIdentity) Role() Role        { return RoleParent }

// SignInResult is returned by [Engine.SignInWithCredentials].
type SignInResult struct {
	SessionID string
	Token     string
	Identity  AuthorizedIdentity
}

// TokenSignInResult is returned by [Engine.SignInWithToken]. SessionEnabled
// is true on success; on a revoked session the call fails with
// [ErrSessionRevoked] and the partial result carries SessionEnabled false so
// clients can distinguish "log in again" from "your token is malformed".
type TokenSignInResult struct {
	SessionID      string
	SessionEnabled bool
	Role           Role
}

// AuthResult is the outcome of a passed revocation check, injected into the
// request path by [Engine.Authorize].
type AuthResult struct {
	IdentityID string
	Login      string
	Role       Role
	SessionID  string
}

// AuthenticatorSetup is the provisioning material returned by
// [Engine.CreateAuthenticator]: the otpauth:// payload a TOTP app scans and
// the manually-typeable key for clients without a camera.
type AuthenticatorSetup struct {
	SecretBase32    string
	ProvisioningURI string
	ManualEntryKey  string
}

// RegistrationRequest is the input for [Engine.StartRegistration].
// RegistrationCode, when present, is verified and consumed before the
// identity is created.
type RegistrationRequest struct {
	Login            string
	Password         string
	Role             Role
	RegistrationCode string
}

// PreVerifier is an optional gate run before registration creates anything.
// Returning false aborts the pipeline without side effects.
type PreVerifier interface {
	Verify(ctx context.Context, req RegistrationRequest) (bool, error)
}

// PreVerifierFunc adapts a function to the [PreVerifier] interface.
type PreVerifierFunc func(ctx context.Context, req RegistrationRequest) (bool, error)

// Verify implements [PreVerifier].
func (f PreVerifierFunc) Verify(ctx context.Context, req RegistrationRequest) (bool, error) {
	return f(ctx, req)
}

// SessionInfo is one entry of an identity's session history.
type SessionInfo struct {
	SessionID string
	Client    Client
	CreatedAt int64
	Enabled   bool
}
