package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-archive/internal/config"
	"github.com/iliyamo/invoice-archive/internal/identity"
	"github.com/iliyamo/invoice-archive/internal/model"
	"github.com/iliyamo/invoice-archive/internal/repository"
	"github.com/iliyamo/invoice-archive/internal/utils"
)

var testCfg = config.Config{JWTSecret: "test-secret", TokenTTLDays: 7, BcryptCost: 4}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func jsonReq(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

// fakeVerifier scripts Google token verification.
type fakeVerifier struct {
	payload identity.Payload
	err     error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (identity.Payload, error) {
	return f.payload, f.err
}

func TestRegister_Success(t *testing.T) {
	db, mock := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{})

	mock.ExpectExec("INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,?,?)").
		WithArgs("ana@example.com", "Ana", sqlmock.AnyArg(), model.ProviderLocal).
		WillReturnResult(sqlmock.NewResult(4, 1))

	req, rec := jsonReq(http.MethodPost, "/api/register", `{"email":"ana@example.com","name":"Ana","password":"secret"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.User.ID != 4 || resp.User.Email != "ana@example.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// Re-registering an email answers 409 and runs no statement beyond the
// rejected insert.
func TestRegister_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{})

	mock.ExpectExec("INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,?,?)").
		WithArgs("ana@example.com", "Ana", sqlmock.AnyArg(), model.ProviderLocal).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	req, rec := jsonReq(http.MethodPost, "/api/register", `{"email":"ana@example.com","name":"Ana","password":"secret"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	db, _ := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{})

	req, rec := jsonReq(http.MethodPost, "/api/register", `{"email":"","name":"","password":""}`)
	c := echo.New().NewContext(req, rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func userRow(t *testing.T, id int64, email, name, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "auth_provider", "created_at", "updated_at"}).
		AddRow(id, email, name, hash, model.ProviderLocal, now, now)
}

func TestLogin_Success(t *testing.T) {
	db, mock := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{})

	mock.ExpectQuery("SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("ana@example.com").
		WillReturnRows(userRow(t, 4, "ana@example.com", "Ana", "secret"))

	req, rec := jsonReq(http.MethodPost, "/api/login", `{"email":"ana@example.com","password":"secret"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Fatalf("no token in %s", rec.Body.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{})

	mock.ExpectQuery("SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("ana@example.com").
		WillReturnRows(userRow(t, 4, "ana@example.com", "Ana", "secret"))

	req, rec := jsonReq(http.MethodPost, "/api/login", `{"email":"ana@example.com","password":"wrong"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, mock := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{})

	mock.ExpectQuery("SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	req, rec := jsonReq(http.MethodPost, "/api/login", `{"email":"nobody@example.com","password":"secret"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGoogleLogin_UnverifiableToken(t *testing.T) {
	db, _ := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{err: errors.New("bad signature")})

	req, rec := jsonReq(http.MethodPost, "/api/google-login", `{"idToken":"garbage"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.GoogleLogin(c); err != nil {
		t.Fatalf("google login: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// A token that verifies but carries no email claim is rejected the same way.
func TestGoogleLogin_NoEmailClaim(t *testing.T) {
	db, _ := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{payload: identity.Payload{Name: "Ana"}})

	req, rec := jsonReq(http.MethodPost, "/api/google-login", `{"idToken":"tok"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.GoogleLogin(c); err != nil {
		t.Fatalf("google login: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGoogleLogin_FirstSightCreatesUser(t *testing.T) {
	db, mock := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{payload: identity.Payload{Email: "g@example.com", Name: "G User"}})

	mock.ExpectQuery("SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("g@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users (email, name, password_hash, auth_provider) VALUES (?,?,NULL,?)").
		WithArgs("g@example.com", "G User", model.ProviderGoogle).
		WillReturnResult(sqlmock.NewResult(5, 1))

	req, rec := jsonReq(http.MethodPost, "/api/google-login", `{"idToken":"tok"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.GoogleLogin(c); err != nil {
		t.Fatalf("google login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.User.ID != 5 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGoogleLogin_ExistingUserReused(t *testing.T) {
	db, mock := newMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), &fakeVerifier{payload: identity.Payload{Email: "ana@example.com", Name: "Ana"}})

	mock.ExpectQuery("SELECT id,email,name,password_hash,auth_provider,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("ana@example.com").
		WillReturnRows(userRow(t, 4, "ana@example.com", "Ana", "secret"))

	req, rec := jsonReq(http.MethodPost, "/api/google-login", `{"idToken":"tok"}`)
	c := echo.New().NewContext(req, rec)
	if err := h.GoogleLogin(c); err != nil {
		t.Fatalf("google login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// No insert expected: ExpectationsWereMet fails if one had run.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
