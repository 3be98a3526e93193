package model

import "time"

const UserCollectionName = "users"

// User model. PasswordHash holds a bcrypt digest, never a plaintext
// password. Responses to clients are shaped in the handler package and
// never include this field.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
