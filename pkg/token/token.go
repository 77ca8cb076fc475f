// Package token, session token'larının üretimi ve doğrulamasını yapar.
//
// Token formatı: HS256 imzalı JWT — header.payload.signature, her parça
// base64url. Payload'da {user_id, username, email, jti, iat, exp} bulunur.
//
// jti (JWT ID) her issue'da üretilen rastgele bir UUID v4'tür (122 bit
// entropi — çakışma olasılığı ihmal edilebilir). Logout'ta revocation
// store'un anahtarı olur: token'ın kendisi stateless kalır, iptal bilgisi
// jti üzerinden dışarıda tutulur.
//
// Decode hataları kapalı bir küme döner: ErrExpired, ErrSignatureInvalid,
// ErrMalformed. Caller'lar errors.Is ile pattern-match yapar — exception
// yakalamak yerine. Üç hatanın ayrı tutulması loglama/metrik içindir;
// HTTP katmanı üçünü de generic 401'e map'ler.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/promptmaster/server/models"
)

// Decode hata kümesi.
//
// Sıralama garantisi: süresi geçmiş ama imzası geçerli bir token her zaman
// ErrExpired döner, asla ErrSignatureInvalid değil. İmza bozuksa süreden
// bağımsız ErrSignatureInvalid döner.
var (
	ErrExpired          = errors.New("token expired")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
)

// Codec, token üretim/doğrulama yapısı.
// Deployment başına tek bir imzalama secret'ı vardır (key rotation yok).
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// New, verilen secret ve varsayılan TTL ile bir Codec oluşturur.
func New(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL, codec'in varsayılan token ömrünü döner.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue, kullanıcı için varsayılan TTL ile yeni bir session token üretir.
func (c *Codec) Issue(user *models.User) (string, error) {
	return c.IssueWithTTL(user, c.ttl)
}

// IssueWithTTL, belirtilen ömürle yeni bir session token üretir.
//
// Her çağrıda YENİ bir jti üretilir — aynı kullanıcı arka arkaya iki kez
// login olsa bile token'lar bağımsızdır; birinin logout'u diğerini
// etkilemez.
func (c *Codec) IssueWithTTL(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(), // jti
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Decode, token'ı doğrular ve claims'i döner.
// İmza VE expiry kontrol edilir; hata her zaman ErrExpired /
// ErrSignatureInvalid / ErrMalformed sentinel'lerinden birini wrap eder.
func (c *Codec) Decode(tokenString string) (*models.TokenClaims, error) {
	return c.decode(tokenString, false)
}

// DecodeAllowExpired, imzayı doğrular ama expiry'yi KONTROL ETMEZ.
//
// Logout akışı için gereklidir: süresi dolmuş bir token ile logout
// zararsız bir no-op'tur (revocation TTL guard'ı zaten sıfır/negatif TTL'de
// yazmaz) — ama token'ın yapısal olarak geçerli ve bizim imzaladığımız bir
// token olması yine de şarttır.
func (c *Codec) DecodeAllowExpired(tokenString string) (*models.TokenClaims, error) {
	return c.decode(tokenString, true)
}

func (c *Codec) decode(tokenString string, allowExpired bool) (*models.TokenClaims, error) {
	opts := []jwt.ParserOption{
		// alg header'ı sabitle — "none" veya RS256 gibi algoritma
		// değiştirme saldırılarını parse aşamasında reddeder.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, mapJWTError(err)
	}

	claims, ok := parsed.Claims.(*models.TokenClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrMalformed)
	}

	return claims, nil
}

// mapJWTError, golang-jwt'nin hata zincirini kendi kapalı kümemize indirger.
//
// Expired kontrolü İLK yapılır: jwt v5, birden fazla doğrulama hatasını
// errors.Join ile birleştirebilir — süresi dolmuş ama imzası geçerli bir
// token her zaman ErrExpired olarak raporlanır.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		// Bilinmeyen doğrulama hataları (ör. ErrTokenUnverifiable)
		// malformed olarak sınıflandırılır — fail-fast, retry yok.
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
