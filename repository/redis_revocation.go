package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promptmaster/server/pkg"
)

// revocationKeyPrefix, Redis'teki iptal kayıtlarının key prefix'i.
// Key formatı: "token_blacklist:<jti>"
const revocationKeyPrefix = "token_blacklist:"

// redisRevocationStore, RevocationStore interface'inin Redis implementasyonu.
//
// Hata modeli asimetriktir:
// - Yazma (Revoke) fail-closed: Redis'e yazılamazsa logout başarısız sayılır —
//   kullanıcıya "çıkış yapıldı" deyip token'ı geçerli bırakmak kabul edilemez.
// - Okuma (IsRevoked) fail-open: Redis erişilemezse token geçerli kabul edilir —
//   aksi halde Redis kesintisi TÜM oturumları düşürür. Bu pencerede iptal edilmiş
//   bir token en fazla kendi exp süresine kadar çalışabilir.
type redisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore, constructor fonksiyonu.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Token'ın süresi zaten dolmuş — saklamaya gerek yok.
		return nil
	}

	if err := s.client.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to revoke token: %v", pkg.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	err := s.client.Get(ctx, revocationKeyPrefix+jti).Err()
	if err == nil {
		// Key var → iptal edilmiş
		return true
	}
	if errors.Is(err, redis.Nil) {
		// Key yok → iptal edilmemiş
		return false
	}

	// Redis erişilemiyor → fail-open, ama logla
	log.Printf("[revocation] redis unavailable, failing open: %v", err)
	return false
}
