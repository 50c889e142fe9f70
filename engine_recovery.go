package auth

import (
	"context"
	"errors"
	"time"

	"github.com/JaspersJas1743/MyJournal-sub002/internal"
)

// StartRecoveryByEmail is step one of the email recovery pipeline: it looks
// up the identity owning the address and opens a flow. Unknown address,
// malformed address, and lookup outage all surface as the same
// ErrVerificationFailed so the wire never confirms whether an account exists.
func (e *Engine) StartRecoveryByEmail(ctx context.Context, email string) (string, error) {
	return e.startRecovery(ctx, email, channelEmail)
}

// StartRecoveryByPhone is the phone-channel variant of StartRecoveryByEmail.
// The two pipelines share their entire state shape; only the lookup key and
// its encoding differ.
func (e *Engine) StartRecoveryByPhone(ctx context.Context, phone string) (string, error) {
	return e.startRecovery(ctx, phone, channelPhone)
}

func (e *Engine) startRecovery(ctx context.Context, contact string, channel recoveryChannel) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}

	var (
		rec IdentityRecord
		err error
	)
	switch channel {
	case channelEmail:
		normalized, vErr := validateEmail(contact)
		if vErr != nil {
			return "", ErrVerificationFailed
		}
		rec, err = e.identities.GetByEmail(ctx, normalized)
	case channelPhone:
		normalized, vErr := validatePhone(contact)
		if vErr != nil {
			return "", ErrVerificationFailed
		}
		rec, err = e.identities.GetByPhone(ctx, encodePhoneForLookup(normalized))
	default:
		return "", ErrVerificationFailed
	}
	if err != nil {
		e.emitAudit(ctx, AuditEvent{EventType: auditEventRecoveryStarted, Success: false, Error: ErrVerificationFailed.Error()})
		return "", ErrVerificationFailed
	}

	flowID := internal.NewFlowID()
	record := &flowRecord{
		Kind:       flowRecovery,
		Stages:     stageIdentityKnown | stageAuthenticatorCreated,
		Channel:    channel,
		IdentityID: rec.ID,
		ExpiresAt:  time.Now().Add(e.config.Recovery.FlowTTL).Unix(),
	}
	if err := e.flows.Save(ctx, flowID, record); err != nil {
		return "", err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventRecoveryStarted,
		IdentityID: rec.ID,
		FlowID:     flowID,
		Success:    true,
	})

	return flowID, nil
}

// VerifyRecoveryCode is step two: it checks the submitted TOTP code against
// the secret enrolled at registration (enrollment is not re-run). Success
// latches the verified stage that ResetPassword requires; mismatches burn
// the flow's attempt budget.
func (e *Engine) VerifyRecoveryCode(ctx context.Context, flowID, code string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}

	record, err := e.flows.Get(ctx, flowID)
	if err != nil {
		return false, err
	}
	if record.Kind != flowRecovery || !record.reached(stageIdentityKnown) {
		return false, ErrSequenceViolation
	}

	ok, err := e.verifyFlowCode(ctx, flowID, record, code, e.config.Recovery.MaxCodeAttempts)
	if err != nil {
		return false, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventRecoveryVerified,
		IdentityID: record.IdentityID,
		FlowID:     flowID,
		Success:    ok,
	})

	return ok, nil
}

// ResetPassword is step three: it requires the verified stage, rehashes the
// new password onto the identity, and closes the flow. Unless
// Recovery.KeepSessionsOnReset is set, every session of the identity is
// revoked: a recovery happens because credentials may be compromised, so
// live sessions on other devices are not to be trusted. The authenticator
// secret survives; recovery proves possession of it.
func (e *Engine) ResetPassword(ctx context.Context, flowID, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if len(newPassword) < e.config.Password.MinLength {
		return ErrValidation
	}

	record, err := e.flows.Get(ctx, flowID)
	if err != nil {
		return err
	}
	if record.Kind != flowRecovery {
		return ErrSequenceViolation
	}
	if !record.reached(stageCodeVerified) {
		return ErrSequenceViolation
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := e.identities.UpdatePasswordHash(ctx, record.IdentityID, hash); err != nil {
		return mapProviderError(err)
	}

	if !e.config.Recovery.KeepSessionsOnReset {
		if _, err := e.sessions.DisableAll(ctx, record.IdentityID); err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
	}

	if err := e.flows.Delete(ctx, flowID); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventPasswordReset,
		IdentityID: record.IdentityID,
		FlowID:     flowID,
		Success:    true,
	})

	return nil
}
