package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/javi-app/javi-backend/pkg/auth"
	"github.com/javi-app/javi-backend/pkg/auth/session"
	"github.com/javi-app/javi-backend/pkg/config"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "javi",
		ExpirationMinutes: 30,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type stubUserRepo struct {
	byEmail   map[string]*models.User
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*models.User)}
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return &duplicateErr{}
	}
	copied := *user
	s.byEmail[user.Email] = &copied
	return nil
}

type duplicateErr struct{}

func (duplicateErr) Error() string {
	return `pq: duplicate key value violates unique constraint "users_email_key"`
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, user := range s.byEmail {
		if user.ID == id {
			stamp := at
			user.LastLoginAt = &stamp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubSessions struct {
	sessions map[string]string
	counter  int
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: make(map[string]string)}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	s.counter++
	token := "refresh-" + accessID
	s.sessions[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	newID := session.NewAccessID()
	token, _ := s.Generate(ctx, newID)
	return newID, token, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	delete(s.sessions, accessID)
	return nil
}

func newTestService(t *testing.T, repo userRepository, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessions()
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Email:       " Crew@Example.COM ",
		Password:    "hunter2hunter2",
		DisplayName: "Crew",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.User.Email != "crew@example.com" {
		t.Fatalf("email not normalized: %q", registered.User.Email)
	}
	if registered.AccessToken == "" || registered.RefreshToken == "" {
		t.Fatal("register must issue a token pair")
	}

	logged, err := svc.Login(ctx, LoginRequest{Email: "crew@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.User.LastLoginAt == nil {
		t.Fatal("login must stamp last_login_at")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), logged.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Email != "crew@example.com" {
		t.Fatalf("unexpected claims email %q", claims.Email)
	}
	if _, ok := sessions.sessions[claims.ID]; !ok {
		t.Fatal("refresh session must be stored under the token jti")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), newStubSessions())
	ctx := context.Background()

	req := RegisterRequest{Email: "crew@example.com", Password: "hunter2hunter2"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	repo := newStubUserRepo()
	hash, err := security.HashPassword("correct-password", testPasswordConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.byEmail["crew@example.com"] = &models.User{
		ID: uuid.New(), Email: "crew@example.com", PasswordHash: hash,
	}
	svc := newTestService(t, repo, newStubSessions())

	for _, password := range []string{"wrong-password", ""} {
		_, err := svc.Login(context.Background(), LoginRequest{Email: "crew@example.com", Password: password})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("password %q: expected unauthorized, got %v", password, err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("credential failures must not leak detail, got %q", typed.Message())
		}
	}

	// unknown account reads the same as a bad password
	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessions()
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "crew@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	pair, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  registered.AccessToken,
		RefreshToken: registered.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.RefreshToken == registered.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// the old pair is now dead
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  registered.AccessToken,
		RefreshToken: registered.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("replayed refresh must be rejected, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessions()
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "crew@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), registered.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := sessions.sessions[claims.ID]; ok {
		t.Fatal("session must be revoked")
	}
}
