package auth

import (
	"context"
	"errors"

	"github.com/JaspersJas1743/MyJournal-sub002/session"
)

// SignOut disables exactly the given session. Disabling an already-disabled
// or unknown session is a no-op, not an error.
func (e *Engine) SignOut(ctx context.Context, sessionID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	changed, err := e.sessions.Disable(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil
		}
		return errors.Join(ErrStoreUnavailable, err)
	}

	if changed {
		e.emitAudit(ctx, AuditEvent{EventType: auditEventSignOut, SessionID: sessionID, Success: true})
	}
	return nil
}

// SignOutAll disables every session owned by identityID, the caller's
// current one included. The caller must re-authenticate afterwards.
func (e *Engine) SignOutAll(ctx context.Context, identityID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	disabled, err := e.sessions.DisableAll(ctx, identityID)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	if disabled > 0 {
		e.emitAudit(ctx, AuditEvent{EventType: auditEventSignOutAll, IdentityID: identityID, Success: true})
	}
	return nil
}

// SignOutOthers disables every session owned by identityID except
// currentSessionID, which stays Enabled.
func (e *Engine) SignOutOthers(ctx context.Context, identityID, currentSessionID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	disabled, err := e.sessions.DisableOthers(ctx, identityID, currentSessionID)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	if disabled > 0 {
		e.emitAudit(ctx, AuditEvent{
			EventType:  auditEventSignOutOthers,
			IdentityID: identityID,
			SessionID:  currentSessionID,
			Success:    true,
		})
	}
	return nil
}

// Sessions returns the identity's full session history, newest first,
// disabled sessions included.
func (e *Engine) Sessions(ctx context.Context, identityID string) ([]SessionInfo, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	records, err := e.sessions.List(ctx, identityID)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	infos := make([]SessionInfo, 0, len(records))
	for _, rec := range records {
		infos = append(infos, SessionInfo{
			SessionID: rec.SessionID,
			Client:    Client(rec.Client),
			CreatedAt: rec.CreatedAt,
			Enabled:   rec.Status == session.StatusEnabled,
		})
	}

	return infos, nil
}
