package auth

import (
	"context"
	"errors"

	"github.com/JaspersJas1743/MyJournal-sub002/session"
)

// Authorize is the per-request revocation gate: the token's signature and
// claims are validated first, then the embedded session id is resolved
// against the store. Only an Enabled session authorizes the request; a
// missing session record counts as disabled.
//
// The check is check-then-use: a session disabled after Authorize
// returns but before the business logic finishes is tolerated for that one
// request and rejected on the next.
func (e *Engine) Authorize(ctx context.Context, token string) (*AuthResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	claims, err := e.tokens.Parse(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	role := Role(claims.Role)
	if !role.Valid() {
		return nil, ErrTokenInvalid
	}

	sess, err := e.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			e.emitAudit(ctx, AuditEvent{
				EventType:  auditEventAuthorizeDenied,
				IdentityID: claims.IdentityID(),
				SessionID:  claims.SessionID,
				Success:    false,
				Error:      ErrSessionRevoked.Error(),
			})
			return nil, ErrSessionRevoked
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if sess.IdentityID != claims.IdentityID() {
		return nil, ErrTokenInvalid
	}
	if !sess.Enabled() {
		e.emitAudit(ctx, AuditEvent{
			EventType:  auditEventAuthorizeDenied,
			IdentityID: claims.IdentityID(),
			SessionID:  claims.SessionID,
			Success:    false,
			Error:      ErrSessionRevoked.Error(),
		})
		return nil, ErrSessionRevoked
	}

	return &AuthResult{
		IdentityID: claims.IdentityID(),
		Login:      claims.Login,
		Role:       role,
		SessionID:  claims.SessionID,
	}, nil
}
