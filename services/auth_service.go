// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern nedir?
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar:
//   - Şifre hash'leme
//   - Session token üretimi ve doğrulaması
//   - Yetki kontrolleri
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/promptmaster/server/database"
	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/pkg/email"
	"github.com/promptmaster/server/pkg/password"
	"github.com/promptmaster/server/pkg/token"
	"github.com/promptmaster/server/repository"
)

// resetTokenTTL, şifre sıfırlama linkinin geçerlilik süresi.
const resetTokenTTL = 20 * time.Minute

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error)
	// Logout, token'ın jti'sini revocation store'a ekler.
	// Süresi dolmuş token ile logout zararsız bir no-op'tur.
	Logout(ctx context.Context, tokenString string) error
	// VerifyToken, tam doğrulama zinciri: imza + süre + iptal + kullanıcı varlığı.
	// Middleware her istekte bunu çağırır.
	VerifyToken(ctx context.Context, tokenString string) (*models.User, error)
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, plainToken, newPassword string) error
}

// AuthResult, login/register sonrası dönen token ve kullanıcı bilgisi.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	db          *sql.DB // şifre sıfırlama transaction'ı için
	userRepo    repository.UserRepository
	resetRepo   repository.ResetTokenRepository
	revocations repository.RevocationStore
	codec       *token.Codec
	emailSender email.EmailSender
}

// NewAuthService, constructor.
//
// emailSender nil olabilir (RESEND_API_KEY yapılandırılmamışsa) —
// bu durumda ForgotPassword token üretir ama email yerine log yazar.
func NewAuthService(
	db *sql.DB,
	userRepo repository.UserRepository,
	resetRepo repository.ResetTokenRepository,
	revocations repository.RevocationStore,
	codec *token.Codec,
	emailSender email.EmailSender,
) AuthService {
	return &authService{
		db:          db,
		userRepo:    userRepo,
		resetRepo:   resetRepo,
		revocations: revocations,
		codec:       codec,
		emailSender: emailSender,
	}
}

// Register, yeni kullanıcı kaydı oluşturur ve hemen bir session token döner.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error) {
	// 1. Validation
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// 2. Argon2id hash
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. User oluştur
	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	// 4. Token üret
	return s.issueToken(user)
}

// Login, kullanıcı girişi yapar.
//
// Hata mesajı bilinçli olarak generic'tir: "invalid username or password" —
// kullanıcı adının var olup olmadığı dışarı sızdırılmaz (user enumeration).
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// Kullanıcıyı bul
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	// Argon2id şifre karşılaştırması (constant-time)
	if !password.Verify(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
	}

	// Son giriş zamanını güncelle — best-effort, login'i engellemez
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("[auth] failed to update last login for user %d: %v", user.ID, err)
	}
	now := time.Now()
	user.LastLogin = &now

	return s.issueToken(user)
}

// Logout, token'ı geri dönülmez şekilde iptal eder.
//
// Token'ın imzası doğrulanır ama süresi KONTROL EDİLMEZ — süresi dolmuş
// token ile logout no-op'tur (revocation store sıfır/negatif TTL'de yazmaz).
// jti taşımayan bir token iptal edilemez: loglanır ve başarılı sayılır,
// çünkü handler'a göre logout idempotent bir işlemdir.
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.codec.DecodeAllowExpired(tokenString)
	if err != nil {
		return fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	jti := claims.RegisteredClaims.ID
	if jti == "" {
		log.Printf("[auth] logout with token missing jti for user %d, nothing to revoke", claims.UserID)
		return nil
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	// Fail-closed: store'a yazılamazsa hata döner — kullanıcıya
	// "çıkış yapıldı" deyip token'ı geçerli bırakmak kabul edilemez.
	return s.revocations.Revoke(ctx, jti, expiresAt)
}

// VerifyToken, tam doğrulama zinciri.
//
// Sıra önemlidir:
// 1. İmza + süre (codec.Decode)
// 2. İptal kontrolü (revocation store)
// 3. Kullanıcı hâlâ var mı? (silinen hesabın token'ı çalışmamalı)
//
// Her başarısızlık ErrUnauthorized'a map'lenir — HTTP katmanı ayrım yapmaz,
// sebep sadece loglarda görünür.
func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrUnauthorized, err.Error())
	}

	jti := claims.RegisteredClaims.ID
	if jti == "" {
		// Bizim ürettiğimiz her token jti taşır — taşımayan token iptal
		// edilemeyeceği için kabul de edilmez.
		return nil, fmt.Errorf("%w: token missing jti", pkg.ErrUnauthorized)
	}

	if s.revocations.IsRevoked(ctx, jti) {
		return nil, fmt.Errorf("%w: token revoked", pkg.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	return user, nil
}

// ForgotPassword, şifre sıfırlama akışını başlatır.
//
// Email adresi kayıtlı değilse de başarılı döner — hangi adreslerin
// kayıtlı olduğu dışarı sızdırılmaz (user enumeration).
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			log.Printf("[auth] password reset requested for unknown email")
			return nil
		}
		return err
	}

	// Plaintext token üret — sadece email'e gider, DB'de SHA256 hash'i saklanır
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	plainToken := hex.EncodeToString(tokenBytes)

	// Eski bekleyen token'ları geçersiz kıl, yenisini yaz
	if err := s.resetRepo.DeleteForUser(ctx, user.ID); err != nil {
		return err
	}

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(plainToken),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	if s.emailSender == nil {
		log.Printf("[auth] email sender not configured, reset token for user %d not delivered", user.ID)
		return nil
	}

	if err := s.emailSender.SendPasswordReset(ctx, user.Email, plainToken); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrInternal, err.Error())
	}

	return nil
}

// ResetPassword, email'deki token ile yeni şifreyi yazar.
//
// Şifre güncelleme ve token tüketimi TEK transaction'da yapılır:
// aynı token'la iki eşzamanlı istekten sadece biri başarılı olur.
func (s *authService) ResetPassword(ctx context.Context, plainToken, newPassword string) error {
	req := &models.ResetPasswordRequest{Token: plainToken, NewPassword: newPassword}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	resetToken, err := s.resetRepo.GetByHash(ctx, hashResetToken(plainToken))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
		}
		return err
	}

	if time.Now().After(resetToken.ExpiresAt) {
		// Süresi dolmuş token'ı temizle — best-effort
		if delErr := s.resetRepo.Consume(ctx, resetToken.ID); delErr != nil && !errors.Is(delErr, pkg.ErrNotFound) {
			log.Printf("[auth] failed to delete expired reset token: %v", delErr)
		}
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
	}

	newHash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txUserRepo := repository.NewSQLiteUserRepo(tx)
		txResetRepo := repository.NewSQLiteResetTokenRepo(tx)

		if err := txUserRepo.UpdatePassword(ctx, resetToken.UserID, newHash); err != nil {
			return err
		}

		// Consume 0 satır etkilerse token başka bir istek tarafından
		// tüketilmiştir — transaction geri alınır.
		if err := txResetRepo.Consume(ctx, resetToken.ID); err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
			}
			return err
		}

		return nil
	})
}

// ─── Private Helpers ───

func (s *authService) issueToken(user *models.User) (*AuthResult, error) {
	signed, err := s.codec.Issue(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &AuthResult{
		AccessToken: signed,
		TokenType:   "bearer",
		User:        *user,
	}, nil
}

// hashResetToken, reset token'ın DB'de saklanan SHA256 hash'ini üretir.
func hashResetToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
