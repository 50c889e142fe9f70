package jwt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func testManagerConfig() Config {
	return Config{
		Secret:   bytes.Repeat([]byte{0xAB}, 32),
		Issuer:   "myjournal",
		Audience: "myjournal-clients",
		TokenTTL: 15 * time.Minute,
		Leeway:   30 * time.Second,
	}
}

func TestIssueParseRoundTrip(t *testing.T) {
	m, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := m.Issue("ident-42", "jsmith", "Teacher", "sess-7")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Parse(signed)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.IdentityID() != "ident-42" {
		t.Fatalf("identity id = %q, want ident-42", claims.IdentityID())
	}
	if claims.Login != "jsmith" || claims.Role != "Teacher" || claims.SessionID != "sess-7" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsTamperedAndForeignTokens(t *testing.T) {
	m, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := m.Issue("ident-42", "jsmith", "Student", "sess-7")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	otherCfg := testManagerConfig()
	otherCfg.Secret = bytes.Repeat([]byte{0xCD}, 32)
	other, err := NewManager(otherCfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cases := []string{
		"",
		"not.a.jwt",
		signed + "x",
		strings.Replace(signed, ".", "_", 1),
	}
	for _, bad := range cases {
		if _, err := m.Parse(bad); err == nil {
			t.Fatalf("Parse accepted malformed token %q", bad)
		}
	}

	if _, err := other.Parse(signed); err == nil {
		t.Fatal("Parse accepted token signed with a different secret")
	}
}

func TestParseRejectsWrongIssuerAndAudience(t *testing.T) {
	base := testManagerConfig()

	issuerCfg := base
	issuerCfg.Issuer = "someone-else"
	issuerM, err := NewManager(issuerCfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	m, err := NewManager(base)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	foreign, err := issuerM.Issue("ident-1", "a", "Student", "s1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Parse(foreign); err == nil {
		t.Fatal("Parse accepted token from another issuer")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testManagerConfig()
	cfg.TokenTTL = 1 * time.Millisecond
	cfg.Leeway = 0
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := m.Issue("ident-1", "a", "Parent", "s1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := m.Parse(signed); err == nil {
		t.Fatal("Parse accepted expired token")
	}
}

// The claim set must never carry credential material.
func TestTokenPayloadCarriesNoPasswordMaterial(t *testing.T) {
	m, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := m.Issue("ident-42", "jsmith", "Administrator", "sess-7")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token structure: %d parts", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("unmarshal payload failed: %v", err)
	}

	allowed := map[string]bool{
		"log": true, "rol": true, "sid": true,
		"sub": true, "iss": true, "aud": true, "iat": true, "exp": true,
	}
	for key := range body {
		if !allowed[key] {
			t.Fatalf("unexpected claim %q in token payload", key)
		}
	}
}

func TestNewManagerRejectsWeakConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.Secret = []byte("short") }},
		{"empty issuer", func(c *Config) { c.Issuer = " " }},
		{"empty audience", func(c *Config) { c.Audience = "" }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"excessive leeway", func(c *Config) { c.Leeway = 5 * time.Minute }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testManagerConfig()
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}
