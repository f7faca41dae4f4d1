package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Users are never created through this service's own
// endpoints; the external identity provider pushes `user.created` and
// `user.updated` webhook events and the webhook handler upserts rows
// here.  Visitors book tickets, owners onboard museums.
//
// Fields:
//  ID        – primary key identifier of the user.
//  ClerkID   – identifier assigned by the identity provider (unique).
//  Role      – VISITOR or OWNER.
//  Name      – full display name.
//  Email     – primary email address.
//  Phone     – contact phone number (may be empty).
//  Avatar    – profile image URL (may be empty).
//  Credits   – promotional credit balance; meaningful for owners only.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
	ID        uint64    // users.id
	ClerkID   string    // users.clerk_id
	Role      string    // users.role (VISITOR or OWNER)
	Name      string    // users.name
	Email     string    // users.email
	Phone     string    // users.phone
	Avatar    string    // users.avatar
	Credits   int64     // users.credits
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}

// Roles stored in users.role and carried in the identity provider's
// token claims.
const (
	RoleVisitor = "VISITOR"
	RoleOwner   = "OWNER"
)
