package model

// User is the identity a reservation belongs to.  Credentials are managed
// by the identity provider that signs the access tokens; only the id,
// email and role are known here.
//
// Fields:
//  ID    – primary key identifier of the user.
//  Email – unique email address.
//  Role  – CUSTOMER or ADMIN.
type User struct {
	ID    int64  // users.id
	Email string // users.email
	Role  string // users.role
}

// Roles accepted on access tokens.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)
