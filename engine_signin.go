package auth

import (
	"context"
	"errors"
	"time"

	"github.com/JaspersJas1743/MyJournal-sub002/internal"
	"github.com/JaspersJas1743/MyJournal-sub002/session"
)

// SignInWithCredentials verifies login+password, opens a new Enabled session
// for the given client, and returns a signed token plus the role-specific
// identity variant. A login miss and a password mismatch are both
// ErrInvalidCredentials; the wire never says which.
func (e *Engine) SignInWithCredentials(ctx context.Context, login, plaintext string, client Client) (*SignInResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	normalizedLogin, err := validateLogin(login)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	rec, err := e.identities.GetByLogin(ctx, normalizedLogin)
	if err != nil {
		mapped := mapProviderError(err)
		if errors.Is(mapped, ErrIdentityNotFound) {
			e.emitAudit(ctx, AuditEvent{EventType: auditEventSignIn, Success: false, Error: ErrInvalidCredentials.Error()})
			return nil, ErrInvalidCredentials
		}
		return nil, mapped
	}

	if !e.hasher.Verify(plaintext, rec.PasswordHash) {
		e.emitAudit(ctx, AuditEvent{EventType: auditEventSignIn, IdentityID: rec.ID, Success: false, Error: ErrInvalidCredentials.Error()})
		return nil, ErrInvalidCredentials
	}

	identity, err := authorizedIdentityFor(rec)
	if err != nil {
		return nil, err
	}

	sessionID := internal.NewSessionID()
	err = e.sessions.Create(ctx, session.Session{
		SessionID:  sessionID,
		IdentityID: rec.ID,
		Client:     string(client),
		CreatedAt:  time.Now().Unix(),
	})
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	token, err := e.tokens.Issue(rec.ID, rec.Login, string(rec.Role), sessionID)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventSignIn,
		IdentityID: rec.ID,
		SessionID:  sessionID,
		Client:     string(client),
		Success:    true,
	})

	return &SignInResult{
		SessionID: sessionID,
		Token:     token,
		Identity:  identity,
	}, nil
}

// SignInWithToken re-validates a previously stored token: signature, claims,
// and the live activity status of its session. A disabled session fails with
// ErrSessionRevoked so clients can tell "log in again" from "your token is
// malformed"; the partial result carries SessionEnabled false alongside.
func (e *Engine) SignInWithToken(ctx context.Context, token string) (*TokenSignInResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	claims, err := e.tokens.Parse(token)
	if err != nil {
		e.emitAudit(ctx, AuditEvent{EventType: auditEventSignInToken, Success: false, Error: ErrTokenInvalid.Error()})
		return nil, ErrTokenInvalid
	}

	role := Role(claims.Role)
	if !role.Valid() {
		return nil, ErrTokenInvalid
	}

	sess, err := e.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			// No record means the session cannot be proven live; treat as
			// disabled rather than leaking the difference.
			e.emitAudit(ctx, AuditEvent{EventType: auditEventSignInToken, IdentityID: claims.IdentityID(), SessionID: claims.SessionID, Success: false, Error: ErrSessionRevoked.Error()})
			return &TokenSignInResult{SessionID: claims.SessionID, Role: role}, ErrSessionRevoked
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if sess.IdentityID != claims.IdentityID() {
		return nil, ErrTokenInvalid
	}
	if !sess.Enabled() {
		e.emitAudit(ctx, AuditEvent{EventType: auditEventSignInToken, IdentityID: claims.IdentityID(), SessionID: claims.SessionID, Success: false, Error: ErrSessionRevoked.Error()})
		return &TokenSignInResult{SessionID: claims.SessionID, Role: role}, ErrSessionRevoked
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventSignInToken,
		IdentityID: claims.IdentityID(),
		SessionID:  claims.SessionID,
		Success:    true,
	})

	return &TokenSignInResult{
		SessionID:      claims.SessionID,
		SessionEnabled: true,
		Role:           role,
	}, nil
}

// VerifyLogin reports whether login is still available for registration.
func (e *Engine) VerifyLogin(ctx context.Context, login string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}

	normalized, err := validateLogin(login)
	if err != nil {
		return false, ErrValidation
	}

	_, err = e.identities.GetByLogin(ctx, normalized)
	if err == nil {
		return false, nil
	}
	mapped := mapProviderError(err)
	if errors.Is(mapped, ErrIdentityNotFound) {
		return true, nil
	}
	return false, mapped
}
