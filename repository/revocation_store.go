package repository

import (
	"context"
	"time"
)

// RevocationStore, iptal edilmiş token jti'lerini tutar.
//
// JWT'ler stateless'tır — sunucu tarafında oturum kaydı yoktur. Logout'un
// etkili olabilmesi için iptal edilen token'ın jti'si burada saklanır ve
// her doğrulamada kontrol edilir.
//
// Kayıtlar kalıcı olmak zorunda değildir: bir jti en fazla token'ın kendi
// exp zamanına kadar anlamlıdır — sonrasında token zaten süre kontrolünden
// geçemez. Bu yüzden store TTL'li çalışır ve süresi dolan kayıtlar düşer.
type RevocationStore interface {
	// Revoke, jti'yi token'ın exp zamanına kadar iptal listesine ekler.
	// expiresAt geçmişteyse no-op'tur (token zaten kullanılamaz).
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// IsRevoked, jti'nin iptal listesinde olup olmadığını döner.
	IsRevoked(ctx context.Context, jti string) bool
}
