package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/invoice-archive/internal/model"
	"github.com/iliyamo/invoice-archive/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a local user with a bcrypt-hashed credential and returns
// the stored record. A duplicate email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, name, password string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,?,?)",
		email, name, hash, model.ProviderLocal)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           uint64(id),
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		AuthProvider: model.ProviderLocal,
	}, nil
}

// CreateFederated inserts a user that signed in through Google for the
// first time. No local credential is stored, so password logins for the
// address always fail verification.
func (r *UserRepo) CreateFederated(ctx context.Context, email, name string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,NULL,?)",
		email, name, model.ProviderGoogle)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           uint64(id),
		Email:        email,
		Name:         name,
		AuthProvider: model.ProviderGoogle,
	}, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.AuthProvider, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.AuthProvider, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
