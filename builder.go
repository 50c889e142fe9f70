package auth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/JaspersJas1743/MyJournal-sub002/jwt"
	"github.com/JaspersJas1743/MyJournal-sub002/password"
	"github.com/JaspersJas1743/MyJournal-sub002/session"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config    Config
	redis     *redis.Client
	provider  IdentityProvider
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing sessions, flows, and
// registration codes. Required.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithIdentityProvider sets the caller's account database adapter. Required.
func (b *Builder) WithIdentityProvider(p IdentityProvider) *Builder {
	b.provider = p
	return b
}

// WithAuditSink sets the destination for audit events. Optional; defaults to
// a NoOpSink when auditing is enabled without a sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires every component, and returns a
// ready Engine. A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.provider == nil {
		return nil, errors.New("identity provider is required")
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:   cfg.Token.Secret,
		Issuer:   cfg.Token.Issuer,
		Audience: cfg.Token.Audience,
		TokenTTL: cfg.Token.TokenTTL,
		Leeway:   cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		identities: b.provider,
		sessions:   session.NewStore(b.redis, cfg.Session.RedisPrefix),
		flows:      newFlowStore(b.redis, cfg.Session.RedisPrefix),
		codes:      newRegistrationCodeStore(b.redis, cfg.Session.RedisPrefix),
		tokens:     tokens,
		hasher:     hasher,
		totp:       newTOTPManager(cfg.TOTP),
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	b.built = true
	return engine, nil
}
