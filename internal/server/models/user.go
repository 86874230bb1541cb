package models

import "time"

// User is the persisted account record. The token lifecycle only reads it;
// rows are created by the admin create-user path.
type User struct {
	ID           int64
	Name         string
	Surname      string
	Login        string
	Mail         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
