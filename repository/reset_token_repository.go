package repository

import (
	"context"

	"github.com/promptmaster/server/models"
)

// ResetTokenRepository, şifre sıfırlama token'larının veritabanı işlemleri.
//
// Token'lar tek kullanımlıktır: doğrulama sonrası Consume ile silinir.
// Şifre güncelleme ve token tüketimi aynı transaction'da yapılır —
// service katmanı tx-scoped repo'ları database.WithTx içinde oluşturur.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// GetByHash, hash'e göre token arar. Süresi dolmuş token da döner —
	// expiry kontrolü service katmanında yapılır (ayırt edici hata mesajı için).
	GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// Consume, token'ı siler. Token zaten silinmişse ErrNotFound döner —
	// bu sayede aynı token'la iki eşzamanlı reset'ten sadece biri başarılı olur.
	Consume(ctx context.Context, id int64) error
	// DeleteForUser, kullanıcının bekleyen tüm reset token'larını siler.
	// Yeni token istenirken eskiler geçersiz kılınır.
	DeleteForUser(ctx context.Context, userID int64) error
}
