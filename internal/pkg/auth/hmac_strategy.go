package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

const defaultTTL = 12 * time.Hour

var encoding = base64.RawURLEncoding

// HMACStrategy signs "<id>.<login>.<expiry>" with HMAC-SHA256. The login is
// base64url encoded so it may contain any character.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: now}
}

// IssueToken generates a signed token for the staff member.
func (s *HMACStrategy) IssueToken(claims Claims) (string, error) {
	if claims.StaffID <= 0 || claims.Login == "" {
		return "", fmt.Errorf("issue token: incomplete claims")
	}
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%d.%s.%d", claims.StaffID, encoding.EncodeToString([]byte(claims.Login)), expires)
	return payload + "." + s.sign(payload), nil
}

// ParseToken validates the signature and expiry and returns the embedded claims.
func (s *HMACStrategy) ParseToken(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Claims{}, ErrInvalidToken
	}
	payload := strings.Join(parts[:3], ".")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[3])) {
		return Claims{}, ErrInvalidToken
	}

	staffID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || staffID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	login, err := encoding.DecodeString(parts[1])
	if err != nil || len(login) == 0 {
		return Claims{}, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if !time.Unix(expires, 0).After(s.now()) {
		return Claims{}, ErrInvalidToken
	}
	return Claims{StaffID: staffID, Login: string(login)}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac-sha256"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return encoding.EncodeToString(mac.Sum(nil))
}
