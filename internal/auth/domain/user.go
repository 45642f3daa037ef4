package domain

import "time"

type User struct {
	ID              int64
	Email           string // stored lower-cased, unique
	Username        string
	PasswordHash    string // "base64(salt):base64(hash)" PBKDF2-HMAC-SHA512
	Roles           []string
	IsActive        bool
	IsDeleted       bool
	IsEmailVerified bool
	CreatedAt       time.Time
	LastModified    time.Time
}
