package auth

import (
	"context"
	"errors"
	"time"

	"github.com/JaspersJas1743/MyJournal-sub002/jwt"
	"github.com/JaspersJas1743/MyJournal-sub002/password"
	"github.com/JaspersJas1743/MyJournal-sub002/session"
)

// Engine is the authentication core. Build one through [Builder] and treat
// it as immutable; all methods are safe for concurrent use.
type Engine struct {
	config     Config
	identities IdentityProvider
	sessions   *session.Store
	flows      *flowStore
	codes      *registrationCodeStore
	tokens     *jwt.Manager
	hasher     *password.Hasher
	totp       *totpManager
	audit      *auditDispatcher
}

// Close flushes the audit dispatcher. The Engine is unusable afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) ready() error {
	if e == nil || e.identities == nil || e.sessions == nil || e.flows == nil ||
		e.tokens == nil || e.hasher == nil || e.totp == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	event.Timestamp = time.Now()
	e.audit.Emit(ctx, event)
}

// mapProviderError folds provider errors onto the engine taxonomy: a reported
// miss stays ErrIdentityNotFound, anything else becomes a backend outage.
func mapProviderError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrIdentityNotFound) {
		return ErrIdentityNotFound
	}
	return errors.Join(ErrProviderUnavailable, err)
}

func authorizedIdentityFor(rec IdentityRecord) (AuthorizedIdentity, error) {
	switch rec.Role {
	case RoleStudent:
		return StudentIdentity{ID: rec.ID, Login: rec.Login, Email: rec.Email, Phone: rec.Phone}, nil
	case RoleTeacher:
		return TeacherIdentity{ID: rec.ID, Login: rec.Login, Email: rec.Email, Phone: rec.Phone}, nil
	case RoleAdministrator:
		return AdministratorIdentity{ID: rec.ID, Login: rec.Login, Email: rec.Email, Phone: rec.Phone}, nil
	case RoleParent:
		return ParentIdentity{ID: rec.ID, Login: rec.Login, Email: rec.Email, Phone: rec.Phone}, nil
	default:
		return nil, ErrRoleUnknown
	}
}
