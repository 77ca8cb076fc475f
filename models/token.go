package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, session token'ın içindeki veriler (payload).
//
// JWT (JSON Web Token) nedir?
// Kullanıcı kimliğini doğrulamak için kullanılan, imzalanmış bir token.
// 3 parçadan oluşur: header.payload.signature (her biri base64url).
//
// Payload'da kullanıcı bilgileri, token'ın expire süresi ve jti bulunur.
// Server her request'te imzayı doğrular — DB'ye gitmeden kullanıcının
// kim olduğunu bilir. jti (RegisteredClaims.ID) her issue'da yeniden
// üretilen rastgele bir UUID'dir ve logout'ta blacklist anahtarı olur.
//
// Bu struct models paketinde tanımlanır çünkü birden fazla katman
// (pkg/token, services, middleware) tarafından kullanılır —
// circular dependency'yi önler.
type TokenClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}
