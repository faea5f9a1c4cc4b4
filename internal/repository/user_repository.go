package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// UserRepo reads and registers users.  Credentials live with the identity
// provider, so a user row only carries the email and role.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.getByID(ctx, r.DB, id)
}

// GetByIDTx is GetByID inside a transaction.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (model.User, error) {
	return r.getByID(ctx, tx, id)
}

func (r *UserRepo) getByID(ctx context.Context, q querier, id int64) (model.User, error) {
	var u model.User
	err := q.QueryRowContext(ctx,
		"SELECT id,email,role FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Role)
	return u, translate(err)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,role FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Role)
	return u, translate(err)
}

// Ensure creates the user when the email is new and sets its role either
// way.
func (r *UserRepo) Ensure(ctx context.Context, email, role string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, role) VALUES (?,?) ON DUPLICATE KEY UPDATE role=VALUES(role)",
		email, role)
	if err != nil {
		return model.User{}, translate(err)
	}
	return r.GetByEmail(ctx, email)
}
