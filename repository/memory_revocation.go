package repository

import (
	"context"
	"time"

	"github.com/promptmaster/server/pkg/cache"
)

// memoryRevocationStore, RevocationStore interface'inin bellek içi implementasyonu.
//
// REDIS_ADDR yapılandırılmadığında kullanılır (geliştirme / tek instance deploy).
// Process restart'ında kayıtlar kaybolur — iptal edilmiş token'lar tekrar
// geçerli hale gelir. Birden fazla instance arasında da paylaşılmaz.
// Production'da Redis kullanılmalıdır.
type memoryRevocationStore struct {
	cache *cache.TTLCache[string, struct{}]
}

// NewMemoryRevocationStore, constructor fonksiyonu.
func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{
		// 5 dakikalık cleanup aralığı: süresi dolan jti'ler zaten Get'te
		// görünmez, fiziksel silme sadece belleği geri kazanır.
		cache: cache.New[string, struct{}](5 * time.Minute),
	}
}

func (s *memoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	s.cache.SetWithTTL(jti, struct{}{}, ttl)
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, jti string) bool {
	_, ok := s.cache.Get(jti)
	return ok
}
