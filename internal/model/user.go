package model

// User represents an application user record as stored in the
// `users` table. Users are created out of band (seed or admin
// tooling) and are only read by this service.
//
// Fields:
//  ID       – uuid primary key.
//  Name     – display name.
//  Email    – unique email address.
//  Password – bcrypt hash of the password.
type User struct {
	ID       string `json:"id"`    // users.id
	Name     string `json:"name"`  // users.name
	Email    string `json:"email"` // users.email
	Password string `json:"-"`     // users.password
}
