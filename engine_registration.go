package auth

import (
	"context"
	"time"

	"github.com/JaspersJas1743/MyJournal-sub002/internal"
)

// IssueRegistrationCode mints a crypto-random invite code granting one
// account with the given role. Only the code's digest is stored; the
// plaintext is returned once for out-of-band delivery.
func (e *Engine) IssueRegistrationCode(ctx context.Context, role Role) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	if !role.Valid() {
		return "", ErrRoleUnknown
	}

	code, err := internal.NewInviteCode(e.config.Registration.CodeDigits)
	if err != nil {
		return "", err
	}

	if err := e.codes.Save(ctx, internal.HashCode(code), role, e.config.Registration.CodeTTL); err != nil {
		return "", err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventCodeIssued,
		Success:   true,
		Metadata:  map[string]string{"role": string(role)},
	})

	return code, nil
}

// VerifyRegistrationCode reports whether code is currently redeemable. It
// does not consume the code; StartRegistration does, exactly once.
func (e *Engine) VerifyRegistrationCode(ctx context.Context, code string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	if code == "" {
		return false, nil
	}

	_, ok, err := e.codes.Peek(ctx, internal.HashCode(code))
	if err != nil {
		return false, err
	}
	return ok, nil
}

// StartRegistration is step one of the registration pipeline. Every
// pre-verifier (login availability, the registration code when one is
// supplied, plus any extras) must pass before anything is created; a single
// false aborts with ErrRegistrationRejected and zero side effects. On
// success the identity exists with hashed credentials only (no contacts, no
// authenticator) and the returned flow id keys the remaining steps.
//
// Not idempotent: calling twice creates two identities. Callers must not
// blindly retry an ambiguous failure.
func (e *Engine) StartRegistration(ctx context.Context, req RegistrationRequest, extra ...PreVerifier) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}

	login, err := validateLogin(req.Login)
	if err != nil {
		return "", ErrValidation
	}
	if len(req.Password) < e.config.Password.MinLength {
		return "", ErrValidation
	}
	if !req.Role.Valid() {
		return "", ErrRoleUnknown
	}

	available, err := e.VerifyLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if !available {
		return "", ErrRegistrationRejected
	}

	if req.RegistrationCode != "" {
		grantedRole, ok, err := e.codes.Consume(ctx, internal.HashCode(req.RegistrationCode))
		if err != nil {
			return "", err
		}
		if !ok || grantedRole != req.Role {
			return "", ErrRegistrationRejected
		}
	}

	for _, verifier := range extra {
		ok, err := verifier.Verify(ctx, req)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrRegistrationRejected
		}
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return "", err
	}

	rec, err := e.identities.Create(ctx, CreateIdentityInput{
		Login:        login,
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		return "", mapProviderError(err)
	}

	flowID := internal.NewFlowID()
	record := &flowRecord{
		Kind:       flowRegistration,
		Stages:     stageIdentityKnown,
		IdentityID: rec.ID,
		ExpiresAt:  time.Now().Add(e.config.Registration.FlowTTL).Unix(),
	}
	if err := e.flows.Save(ctx, flowID, record); err != nil {
		return "", err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventRegistration,
		IdentityID: rec.ID,
		FlowID:     flowID,
		Success:    true,
	})

	return flowID, nil
}

// CreateAuthenticator is step two: it requires a started registration flow,
// generates a TOTP secret, persists it on the identity, and returns the
// provisioning material. Calling it again re-enrolls: the old secret is
// overwritten and codes derived from it stop verifying.
func (e *Engine) CreateAuthenticator(ctx context.Context, flowID string) (*AuthenticatorSetup, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	record, err := e.flows.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if record.Kind != flowRegistration || !record.reached(stageIdentityKnown) {
		return nil, ErrSequenceViolation
	}

	rec, err := e.identities.GetByID(ctx, record.IdentityID)
	if err != nil {
		return nil, mapProviderError(err)
	}

	raw, encoded, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	if err := e.identities.SetAuthenticatorSecret(ctx, rec.ID, raw); err != nil {
		return nil, mapProviderError(err)
	}

	record.Stages |= stageAuthenticatorCreated
	// Re-enrollment resets the verified latch: the new secret has not been
	// proven yet.
	record.Stages &^= stageCodeVerified
	if err := e.flows.Save(ctx, flowID, record); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventAuthenticatorSetup,
		IdentityID: rec.ID,
		FlowID:     flowID,
		Success:    true,
	})

	return &AuthenticatorSetup{
		SecretBase32:    encoded,
		ProvisioningURI: e.totp.ProvisionURI(encoded, rec.Login),
		ManualEntryKey:  e.totp.ManualEntryKey(encoded),
	}, nil
}

// VerifyAuthenticatorCode is step three: it requires an enrolled
// authenticator and checks the submitted code against it. A mismatch leaves
// the flow retryable until the attempt budget is exhausted; success latches
// the verified stage that the contact-binding steps require.
func (e *Engine) VerifyAuthenticatorCode(ctx context.Context, flowID, code string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}

	record, err := e.flows.Get(ctx, flowID)
	if err != nil {
		return false, err
	}
	if record.Kind != flowRegistration || !record.reached(stageAuthenticatorCreated) {
		return false, ErrSequenceViolation
	}

	ok, err := e.verifyFlowCode(ctx, flowID, record, code, e.config.Registration.MaxCodeAttempts)
	if err != nil {
		return false, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventCodeVerified,
		IdentityID: record.IdentityID,
		FlowID:     flowID,
		Success:    ok,
	})

	return ok, nil
}

// SetEmail is a step-four contact binding. It requires the verified stage;
// invoking it earlier is a sequence violation and mutates nothing.
func (e *Engine) SetEmail(ctx context.Context, flowID, email string) error {
	return e.bindContact(ctx, flowID, email, validateEmail, IdentityProvider.SetEmail, "email")
}

// SetPhone is the phone counterpart of SetEmail. Either, both, or neither
// contact may be bound; there is no ordering between them.
func (e *Engine) SetPhone(ctx context.Context, flowID, phone string) error {
	return e.bindContact(ctx, flowID, phone, validatePhone, IdentityProvider.SetPhone, "phone")
}

func (e *Engine) bindContact(
	ctx context.Context,
	flowID, value string,
	normalize func(string) (string, error),
	write func(IdentityProvider, context.Context, string, string) error,
	kind string,
) error {
	if err := e.ready(); err != nil {
		return err
	}

	normalized, err := normalize(value)
	if err != nil {
		return ErrValidation
	}

	record, err := e.flows.Get(ctx, flowID)
	if err != nil {
		return err
	}
	if record.Kind != flowRegistration {
		return ErrSequenceViolation
	}
	if !record.reached(stageCodeVerified) {
		return ErrSequenceViolation
	}

	if err := write(e.identities, ctx, record.IdentityID, normalized); err != nil {
		return mapProviderError(err)
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:  auditEventContactBound,
		IdentityID: record.IdentityID,
		FlowID:     flowID,
		Success:    true,
		Metadata:   map[string]string{"kind": kind},
	})

	return nil
}

// verifyFlowCode runs TOTP verification for a flow and manages the shared
// attempt budget and verified latch. Used by both pipelines.
func (e *Engine) verifyFlowCode(ctx context.Context, flowID string, record *flowRecord, code string, maxAttempts int) (bool, error) {
	rec, err := e.identities.GetByID(ctx, record.IdentityID)
	if err != nil {
		return false, mapProviderError(err)
	}
	if len(rec.AuthenticatorSecret) == 0 {
		return false, ErrAuthenticatorNotConfigured
	}

	if int(record.Attempts) >= maxAttempts {
		return false, ErrFlowAttemptsExceeded
	}

	ok, err := e.totp.VerifyCode(rec.AuthenticatorSecret, code, time.Now())
	if err != nil {
		return false, err
	}

	if !ok {
		record.Attempts++
		if saveErr := e.flows.Save(ctx, flowID, record); saveErr != nil {
			return false, saveErr
		}
		if int(record.Attempts) >= maxAttempts {
			return false, ErrFlowAttemptsExceeded
		}
		return false, nil
	}

	record.Stages |= stageCodeVerified
	if err := e.flows.Save(ctx, flowID, record); err != nil {
		return false, err
	}

	return true, nil
}
