package repository

import (
	"context"
	"database/sql"

	"github.com/zeno-labs/museum-companion/internal/model"
)

// UserRepo persists user records pushed by the identity provider's
// webhooks.  This service never issues credentials itself: rows appear
// via Upsert when a user.created or user.updated event arrives.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID returns a user by primary key, or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, clerk_id, role, name, email, phone, avatar, credits, created_at, updated_at
	           FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByClerkID returns a user by the identity provider's identifier,
// or ErrUserNotFound.
func (r *UserRepo) GetByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	const q = `SELECT id, clerk_id, role, name, email, phone, avatar, credits, created_at, updated_at
	           FROM users WHERE clerk_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, clerkID))
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.ClerkID, &u.Role, &u.Name, &u.Email, &u.Phone, &u.Avatar,
		&u.Credits, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert inserts a user keyed by clerk_id or refreshes the profile
// fields of an existing row.  Role and credits are set on insert only;
// a profile update from the identity provider must not demote an owner
// or reset their balance.  The populated model is returned.
func (r *UserRepo) Upsert(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `INSERT INTO users (clerk_id, role, name, email, phone, avatar, credits)
	           VALUES (?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               name = VALUES(name),
	               email = VALUES(email),
	               phone = VALUES(phone),
	               avatar = VALUES(avatar)`
	if _, err := r.db.ExecContext(ctx, q,
		u.ClerkID, u.Role, u.Name, u.Email, u.Phone, u.Avatar, u.Credits); err != nil {
		return nil, err
	}
	return r.GetByClerkID(ctx, u.ClerkID)
}
