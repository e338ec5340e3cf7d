package auth

import "time"

// Claims identify the staff member a token was issued to.
type Claims struct {
	StaffID int64
	Login   string
}

// Strategy issues and verifies staff session tokens.
type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
	Now func() time.Time
}
