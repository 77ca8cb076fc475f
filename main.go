// Package main, Prompt Master backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//   1. Config'i yükle
//   2. Database'i başlat (migration'lar gömülü)
//   3. Revocation store'u kur (Redis veya in-memory fallback)
//   4. Repository'leri oluştur (DB bağlantısı ile)
//   5. Service'leri oluştur (repository'ler ile)
//   6. Handler'ları oluştur (service'ler ile)
//   7. Middleware'ları oluştur
//   8. HTTP router'ı kur, route'ları bağla
//   9. CORS yapılandır
//  10. HTTP Server'ı başlat
//  11. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/promptmaster/server/config"
	"github.com/promptmaster/server/database"
	"github.com/promptmaster/server/handlers"
	"github.com/promptmaster/server/middleware"
	"github.com/promptmaster/server/pkg/email"
	"github.com/promptmaster/server/pkg/gemini"
	"github.com/promptmaster/server/pkg/token"
	"github.com/promptmaster/server/repository"
	"github.com/promptmaster/server/services"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] prompt master server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to access embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Revocation Store ───
	//
	// REDIS_ADDR yapılandırılmışsa Redis kullanılır — birden fazla backend
	// instance'ı aynı blacklist'i paylaşır. Boşsa in-memory fallback devreye
	// girer (tek instance / development).
	var revocations repository.RevocationStore
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("[main] failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancel()

		revocations = repository.NewRedisRevocationStore(redisClient)
		log.Printf("[main] token revocation store: redis (%s)", cfg.Redis.Addr)
	} else {
		revocations = repository.NewMemoryRevocationStore()
		log.Println("[main] token revocation store: in-memory (REDIS_ADDR not set, logout will not survive restarts)")
	}

	// ─── 4. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	templateRepo := repository.NewSQLiteTemplateRepo(db.Conn)
	historyRepo := repository.NewSQLiteHistoryRepo(db.Conn)
	resetRepo := repository.NewSQLiteResetTokenRepo(db.Conn)

	// ─── 5. Service Layer ───
	tokenCodec := token.New(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
	} else {
		log.Println("[main] RESEND_API_KEY not set, password reset emails disabled")
	}

	authService := services.NewAuthService(db.Conn, userRepo, resetRepo, revocations, tokenCodec, emailSender)
	templateService := services.NewTemplateService(templateRepo)
	optimizerService := services.NewOptimizerService(templateRepo, historyRepo, gemini.NewGenerator())

	// ─── 6. Handler Layer ───
	authHandler := handlers.NewAuthHandler(authService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	promptHandler := handlers.NewPromptHandler(optimizerService)
	modelHandler := handlers.NewModelHandler()

	// ─── 7. Middleware ───
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// ─── 8. HTTP Router ───
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"promptmaster"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/v1/auth/reset-password", authHandler.ResetPassword)

	// Logout middleware'dan geçmez — süresi dolmuş token'la da logout yapılabilmeli.
	// Token doğrulaması (imza, allow-expired) service katmanında yapılır.
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)

	// Protected endpoint'ler — authMiddleware.Require() sarar
	mux.Handle("GET /api/v1/auth/me", authMiddleware.Require(http.HandlerFunc(authHandler.Me)))

	// Templates — okuma optional auth (anonim sadece varsayılanları görür),
	// yazma işlemleri auth gerektirir
	mux.Handle("GET /api/v1/templates", authMiddleware.Optional(http.HandlerFunc(templateHandler.List)))
	mux.Handle("GET /api/v1/templates/{id}", authMiddleware.Optional(http.HandlerFunc(templateHandler.Get)))
	mux.Handle("POST /api/v1/templates", authMiddleware.Require(http.HandlerFunc(templateHandler.Create)))
	mux.Handle("PUT /api/v1/templates/{id}", authMiddleware.Require(http.HandlerFunc(templateHandler.Update)))
	mux.Handle("DELETE /api/v1/templates/{id}", authMiddleware.Require(http.HandlerFunc(templateHandler.Delete)))

	// Prompts — optimize optional auth, history auth gerektirir
	mux.Handle("POST /api/v1/prompts/optimize", authMiddleware.Optional(http.HandlerFunc(promptHandler.Optimize)))
	mux.Handle("GET /api/v1/prompts/history", authMiddleware.Require(http.HandlerFunc(promptHandler.History)))

	// Models — public
	mux.HandleFunc("GET /api/v1/models", modelHandler.List)

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // frontend dev server
			"http://localhost:5173", // Vite dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Gemini çağrıları uzun sürebilir
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// HTTP server'ı kapat — yeni request kabul etmeyi durdurur,
	// mevcut request'lerin bitmesini bekler (5sn timeout).
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
