// Package password, şifre hash'leme ve doğrulama işlemlerini yapar.
//
// Algoritma: Argon2id (golang.org/x/crypto/argon2).
// Neden Argon2id? Memory-hard bir fonksiyondur — GPU/ASIC ile offline
// brute-force saldırılarını bcrypt'ten çok daha pahalı hale getirir.
//
// Çıktı formatı PHC string'idir, salt hash'in içine gömülüdür:
//
//	$argon2id$v=19$m=102400,t=2,p=8$<salt_b64>$<hash_b64>
//
// Bu sayede doğrulama için ayrı bir salt kolonu gerekmez — parametreler
// ileride değişse bile eski hash'ler kendi parametreleriyle doğrulanır.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Hash parametreleri — interaktif login gecikmesi (~50-150ms) ile offline
// brute-force direnci arasındaki dengeye göre seçilmiş sabitler.
const (
	timeCost    = 2       // iterasyon sayısı
	memoryCost  = 102400  // KiB cinsinden — 100 MB
	parallelism = 8       // paralel thread sayısı
	hashLen     = 32      // üretilen hash uzunluğu (byte)
	saltLen     = 16      // salt uzunluğu (byte)
)

// Hash, verilen şifreyi Argon2id ile hash'ler ve PHC string döner.
// Her çağrıda yeni rastgele salt üretilir — aynı şifre iki kez
// hash'lendiğinde farklı çıktılar oluşur.
func Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, hashLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memoryCost, timeCost, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify, plaintext şifreyi saklanan PHC hash'i ile karşılaştırır.
//
// SÖZLEŞME: Bu fonksiyon asla panic atmaz ve error dönmez.
// Bozuk/eski formatta bir hash görürse false döner ve loglar —
// login akışı "şifre yanlış" gibi davranır, 500 fırlatmaz.
func Verify(stored, password string) bool {
	if stored == "" || password == "" {
		return false
	}

	memory, time, threads, salt, hash, err := decodePHC(stored)
	if err != nil {
		log.Printf("[password] invalid stored hash format: %v", err)
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))

	// Timing saldırılarına karşı constant-time karşılaştırma
	return subtle.ConstantTimeCompare(hash, computed) == 1
}

// decodePHC, "$argon2id$v=19$m=..,t=..,p=..$salt$hash" formatını parse eder.
func decodePHC(encoded string) (memory, time uint32, threads uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	// parts[0] boş string'dir çünkü format '$' ile başlar
	if len(parts) != 6 {
		return 0, 0, 0, nil, nil, fmt.Errorf("expected 6 segments, got %d", len(parts))
	}
	if parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid version segment: %w", err)
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var par uint32
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &par); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid params segment: %w", err)
	}
	if par == 0 || par > 255 {
		return 0, 0, 0, nil, nil, fmt.Errorf("parallelism out of range: %d", par)
	}
	threads = uint8(par)

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid hash encoding: %w", err)
	}
	if len(hash) == 0 {
		return 0, 0, 0, nil, nil, fmt.Errorf("empty hash")
	}

	return memory, time, threads, salt, hash, nil
}
