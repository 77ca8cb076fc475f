package services

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptmaster/server/database"
	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/pkg/token"
	"github.com/promptmaster/server/repository"
)

// captureEmailSender, gönderilen reset token'ı testin okuyabilmesi için saklar.
type captureEmailSender struct {
	lastEmail string
	lastToken string
}

func (c *captureEmailSender) SendPasswordReset(_ context.Context, toEmail, plainToken string) error {
	c.lastEmail = toEmail
	c.lastToken = plainToken
	return nil
}

type authTestEnv struct {
	svc    AuthService
	codec  *token.Codec
	db     *database.DB
	emails *captureEmailSender
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	codec := token.New("test-secret", 30*time.Minute)
	emails := &captureEmailSender{}

	svc := NewAuthService(
		db.Conn,
		repository.NewSQLiteUserRepo(db.Conn),
		repository.NewSQLiteResetTokenRepo(db.Conn),
		repository.NewMemoryRevocationStore(),
		codec,
		emails,
	)

	return &authTestEnv{svc: svc, codec: codec, db: db, emails: emails}
}

func registerAlice(t *testing.T, env *authTestEnv) *AuthResult {
	t.Helper()

	result, err := env.svc.Register(context.Background(), &models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return result
}

func TestRegisterAndVerify(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result := registerAlice(t, env)
	assert.Equal(t, "bearer", result.TokenType)
	assert.Equal(t, "alice", result.User.Username)
	assert.Empty(t, result.User.PasswordHash, "hash must never leave the service")

	user, err := env.svc.VerifyToken(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registerAlice(t, env)

	_, err := env.svc.Register(ctx, &models.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, &models.RegisterRequest{
		Username: "ab", Email: "a@b.co", Password: "password123",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = env.svc.Register(ctx, &models.RegisterRequest{
		Username: "alice", Email: "a@b.co", Password: "short",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestLogin(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registerAlice(t, env)

	result, err := env.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotNil(t, result.User.LastLogin)
}

func TestLoginGenericError(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registerAlice(t, env)

	// Yanlış şifre ve olmayan kullanıcı AYNI mesajı döner — enumeration koruması
	_, wrongPass := env.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrongpass"})
	require.ErrorIs(t, wrongPass, pkg.ErrUnauthorized)

	_, noUser := env.svc.Login(ctx, &models.LoginRequest{Username: "ghost", Password: "password123"})
	require.ErrorIs(t, noUser, pkg.ErrUnauthorized)

	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result := registerAlice(t, env)

	// Logout öncesi token geçerli
	_, err := env.svc.VerifyToken(ctx, result.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, result.AccessToken))

	// Logout sonrası aynı token reddedilir
	_, err = env.svc.VerifyToken(ctx, result.AccessToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestLogoutDoesNotAffectOtherSessions(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registerAlice(t, env)

	s1, err := env.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	s2, err := env.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, s1.AccessToken))

	// s1 iptal, s2 hâlâ geçerli — revocation jti bazlıdır, kullanıcı bazlı değil
	_, err = env.svc.VerifyToken(ctx, s1.AccessToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	_, err = env.svc.VerifyToken(ctx, s2.AccessToken)
	assert.NoError(t, err)
}

func TestLogoutIdempotent(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result := registerAlice(t, env)

	require.NoError(t, env.svc.Logout(ctx, result.AccessToken))
	require.NoError(t, env.svc.Logout(ctx, result.AccessToken))
}

func TestLogoutExpiredToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result := registerAlice(t, env)

	expired, err := env.codec.IssueWithTTL(&result.User, -time.Minute)
	require.NoError(t, err)

	// Süresi dolmuş token'la logout zararsız no-op
	assert.NoError(t, env.svc.Logout(ctx, expired))
}

func TestLogoutInvalidToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	err := env.svc.Logout(ctx, "not-a-token")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestVerifyTokenExpired(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result := registerAlice(t, env)

	expired, err := env.codec.IssueWithTTL(&result.User, -time.Minute)
	require.NoError(t, err)

	_, err = env.svc.VerifyToken(ctx, expired)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registerAlice(t, env)

	require.NoError(t, env.svc.ForgotPassword(ctx, "alice@example.com"))
	require.Equal(t, "alice@example.com", env.emails.lastEmail)
	require.NotEmpty(t, env.emails.lastToken)

	require.NoError(t, env.svc.ResetPassword(ctx, env.emails.lastToken, "brand-new-pass"))

	// Eski şifre artık çalışmaz, yenisi çalışır
	_, err := env.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = env.svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "brand-new-pass"})
	assert.NoError(t, err)

	// Token tek kullanımlık
	err = env.svc.ResetPassword(ctx, env.emails.lastToken, "yet-another-pass")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	// Bilinmeyen email de başarılı döner — enumeration koruması
	assert.NoError(t, env.svc.ForgotPassword(ctx, "ghost@example.com"))
	assert.Empty(t, env.emails.lastToken)
}

func TestResetPasswordInvalidToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	err := env.svc.ResetPassword(ctx, "deadbeef", "new-password-1")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}
