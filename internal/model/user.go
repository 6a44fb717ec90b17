package model

import "time"

// Authentication providers recorded on a user row. Local users carry a
// bcrypt password hash; Google users may have none.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents an application user record as stored in the `users`
// table. PasswordHash is nullable because accounts created through Google
// sign-in have no local credential; such accounts can never pass a
// password login.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	Name         – display name.
//	PasswordHash – bcrypt hashed password (nil for federated-only accounts).
//	AuthProvider – origin of the account ("local" or "google").
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash *string   `json:"-"`
	AuthProvider string    `json:"auth_provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
