package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/invoice-archive/internal/model"
	"github.com/iliyamo/invoice-archive/internal/utils"
)

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,?,?)").
		WithArgs("ana@example.com", "Ana", sqlmock.AnyArg(), model.ProviderLocal).
		WillReturnResult(sqlmock.NewResult(4, 1))

	u, err := repo.Create(context.Background(), "  Ana@Example.com ", "Ana", "secret", 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID != 4 || u.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash == nil || !utils.VerifyPassword(*u.PasswordHash, "secret") {
		t.Fatal("stored hash does not verify against the password")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// Duplicate emails surface as ErrEmailExists and nothing else changes.
func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,?,?)").
		WithArgs("ana@example.com", "Ana", sqlmock.AnyArg(), model.ProviderLocal).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ana@example.com' for key 'uq_users_email'"))

	_, err := repo.Create(context.Background(), "ana@example.com", "Ana", "secret", 4)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserRepo_CreateFederated_NoCredential(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,NULL,?)").
		WithArgs("g@example.com", "G User", model.ProviderGoogle).
		WillReturnResult(sqlmock.NewResult(5, 1))

	u, err := repo.CreateFederated(context.Background(), "g@example.com", "G User")
	if err != nil {
		t.Fatalf("create federated: %v", err)
	}
	if u.PasswordHash != nil {
		t.Fatal("federated user must not carry a credential")
	}
	if u.AuthProvider != model.ProviderGoogle {
		t.Fatalf("provider = %s", u.AuthProvider)
	}
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "auth_provider", "created_at", "updated_at"}).
			AddRow(4, "ana@example.com", "Ana", "$2a$04$hash", model.ProviderLocal, now, now))

	u, err := repo.GetByEmail(context.Background(), "Ana@Example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u.ID != 4 || u.Name != "Ana" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepo_GetByEmail_Unknown(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}
