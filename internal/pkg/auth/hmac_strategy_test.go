package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewHMACStrategyDefaults(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy.ttl != defaultTTL {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
	if strategy.now == nil {
		t.Fatal("expected clock to be set")
	}
	if strategy.Name() != "hmac-sha256" {
		t.Fatalf("unexpected name: %s", strategy.Name())
	}
}

func TestHMACStrategyIssueAndParse(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(Claims{StaffID: 42, Login: "chef:amine"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.StaffID != 42 || claims.Login != "chef:amine" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHMACStrategyIssueRejectsIncompleteClaims(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if _, err := strategy.IssueToken(Claims{Login: "x"}); err == nil {
		t.Fatal("expected error without staff id")
	}
	if _, err := strategy.IssueToken(Claims{StaffID: 1}); err == nil {
		t.Fatal("expected error without login")
	}
}

func TestHMACStrategyParseRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute, Now: fixedClock(now)})
	valid, err := strategy.IssueToken(Claims{StaffID: 7, Login: "ops"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	parts := strings.Split(valid, ".")

	resign := func(payload string) string { return payload + "." + strategy.sign(payload) }
	login := encoding.EncodeToString([]byte("ops"))

	cases := map[string]string{
		"garbage":         "not-a-token",
		"tampered sig":    strings.Join(append(parts[:3:3], "tampered"), "."),
		"other secret":    strings.Join(parts[:3], ".") + "." + NewHMACStrategy("other", Options{}).sign(strings.Join(parts[:3], ".")),
		"bad id":          resign("abc." + login + ".1700000060"),
		"zero id":         resign("0." + login + ".1700000060"),
		"bad login":       resign("7.%%%.1700000060"),
		"empty login":     resign("7..1700000060"),
		"bad expiry":      resign("7." + login + ".soon"),
		"expired":         resign("7." + login + ".1699999999"),
		"expires exactly": resign("7." + login + ".1700000000"),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestHMACStrategyTokenExpiresWithClock(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := now
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute, Now: func() time.Time { return clock }})

	token, err := strategy.IssueToken(Claims{StaffID: 1, Login: "ops"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := strategy.ParseToken(token); err != nil {
		t.Fatalf("expected fresh token to parse: %v", err)
	}

	clock = now.Add(2 * time.Minute)
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}
