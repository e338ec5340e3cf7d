package model

import "time"

// Staff is a restaurant operator allowed to move orders through their lifecycle.
type Staff struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}
