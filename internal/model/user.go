package model

import "time"

// Role values stored in users.role. The role embedded in an access token is
// a snapshot taken at issuance; changing a user's role only takes effect on
// the next login or refresh.
const (
	RoleAdmin   = "Admin"
	RoleMentor  = "Mentor"
	RoleLearner = "Learner"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleMentor || s == RoleLearner
}

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json tags
// are omitted here because these structs are used by the repository layer;
// handlers define separate response types with appropriate JSON tags and
// must never serialize PasswordHash outward.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Phone        – unique phone number.
//  Picture      – optional profile picture URL.
//  Role         – role name (Admin, Mentor or Learner).
//  CanHost      – whether the user may host live sessions.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Phone        string    // users.phone
	Picture      string    // users.picture
	Role         string    // users.role
	CanHost      bool      // users.can_host
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
