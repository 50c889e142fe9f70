package auth

import (
	"errors"
	"strings"
	"time"
)

// Config is the full engine configuration, one section per concern. It is
// consumed at [Builder.Build] time; the Engine never mutates it afterwards.
type Config struct {
	Token        TokenConfig
	TOTP         TOTPConfig
	Password     PasswordConfig
	Session      SessionConfig
	Registration RegistrationConfig
	Recovery     RecoveryConfig
	Audit        AuditConfig
}

// TokenConfig configures bearer token issuance and validation.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TokenTTL time.Duration
	Leeway   time.Duration
}

// TOTPConfig configures the second-factor authenticator.
type TOTPConfig struct {
	Issuer    string
	Digits    int
	Period    int
	Skew      int
	Algorithm string // "SHA1" (default), "SHA256", "SHA512"
}

// PasswordConfig carries the Argon2id cost parameters and the minimum
// accepted plaintext length.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// SessionConfig configures the Redis session store.
type SessionConfig struct {
	RedisPrefix string
}

// RegistrationConfig configures the registration pipeline: how long a flow
// record lives, the shape of invite codes, and the TOTP retry budget.
type RegistrationConfig struct {
	FlowTTL         time.Duration
	CodeDigits      int
	CodeTTL         time.Duration
	MaxCodeAttempts int
}

// RecoveryConfig configures the account recovery pipelines.
// KeepSessionsOnReset opts out of the default policy of revoking every
// session after a recovery password reset.
type RecoveryConfig struct {
	FlowTTL             time.Duration
	MaxCodeAttempts     int
	KeepSessionsOnReset bool
}

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// DefaultConfig returns the configuration a fresh [Builder] starts from. The
// token secret is empty and must be supplied by the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer:   "myjournal",
			Audience: "myjournal-clients",
			TokenTTL: 24 * time.Hour,
			Leeway:   30 * time.Second,
		},
		TOTP: TOTPConfig{
			Issuer:    "MyJournal",
			Digits:    6,
			Period:    30,
			Skew:      1,
			Algorithm: "SHA1",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		Session: SessionConfig{
			RedisPrefix: "mja",
		},
		Registration: RegistrationConfig{
			FlowTTL:         30 * time.Minute,
			CodeDigits:      7,
			CodeTTL:         7 * 24 * time.Hour,
			MaxCodeAttempts: 5,
		},
		Recovery: RecoveryConfig{
			FlowTTL:         15 * time.Minute,
			MaxCodeAttempts: 5,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Token.Issuer) == "" || strings.TrimSpace(cfg.Token.Audience) == "" {
		return errors.New("token issuer and audience are required")
	}
	if len(cfg.Token.Secret) == 0 {
		return errors.New("token secret is required")
	}
	if cfg.TOTP.Digits < 6 || cfg.TOTP.Digits > 8 {
		return errors.New("totp digits must be between 6 and 8")
	}
	if cfg.TOTP.Period < 15 || cfg.TOTP.Period > 120 {
		return errors.New("totp period must be between 15s and 120s")
	}
	if cfg.TOTP.Skew < 0 || cfg.TOTP.Skew > 4 {
		return errors.New("totp skew must be between 0 and 4 steps")
	}
	if cfg.Password.MinLength < 6 {
		return errors.New("password minimum length must be at least 6")
	}
	if cfg.Registration.FlowTTL <= 0 || cfg.Recovery.FlowTTL <= 0 {
		return errors.New("flow TTLs must be positive")
	}
	if cfg.Registration.MaxCodeAttempts <= 0 || cfg.Recovery.MaxCodeAttempts <= 0 {
		return errors.New("code attempt budgets must be positive")
	}
	if cfg.Registration.CodeDigits < 6 || cfg.Registration.CodeDigits > 10 {
		return errors.New("registration code digits must be between 6 and 10")
	}
	if cfg.Registration.CodeTTL <= 0 {
		return errors.New("registration code TTL must be positive")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Token.Secret != nil {
		out.Token.Secret = make([]byte, len(cfg.Token.Secret))
		copy(out.Token.Secret, cfg.Token.Secret)
	}
	return out
}
