package domain

import "time"

// AnonymousUserID is the user id of a session nobody has logged into.
// Such sessions keep their tasks in the local key-value store.
const AnonymousUserID int64 = 0

// User is an account that owns remote records.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
