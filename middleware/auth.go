// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Middleware'lar zincir şeklinde çalışır: Auth → Handler
//
// Go'da middleware bir fonksiyondur:
//   func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"net/http"

	"github.com/promptmaster/server/handlers"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/services"
)

// AuthMiddleware, session token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Require, token zorunlu kılan middleware.
// Token yoksa veya geçersizse → 401 Unauthorized.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Middleware nasıl çalışır?
// 1. "Authorization" header'ını oku, "Bearer " prefix'ini kaldır
// 2. AuthService.VerifyToken() ile tam zinciri çalıştır:
//    imza + süre + iptal kontrolü + kullanıcı varlığı
// 3. Geçerliyse → kullanıcıyı context'e ekle → next handler'ı çağır
// 4. Geçersizse → 401 döndür, next ÇAĞIRILMAZ
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := handlers.BearerToken(r)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := m.authService.VerifyToken(r.Context(), tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// Password hash'i temizle — context'te taşınmamalı
		user.PasswordHash = ""

		// context.WithValue: mevcut context'e key-value ekler.
		// Downstream handler'lar r.Context().Value(UserContextKey) ile erişir.
		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional, token'ı ZORUNLU KILMAYAN middleware.
//
// Üç durum vardır:
// 1. Authorization header hiç yok → istek anonim devam eder
// 2. Header var ve token geçerli → kullanıcı context'e eklenir
// 3. Header var ama token geçersiz → 401
//
// Üçüncü durum bilinçlidir: bozuk bir token'la gelen istek sessizce anonim
// sayılmaz — client token'ının geçersiz olduğunu öğrenmelidir.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := handlers.BearerToken(r)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := m.authService.VerifyToken(r.Context(), tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user.PasswordHash = ""

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
