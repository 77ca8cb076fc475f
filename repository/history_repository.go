package repository

import (
	"context"

	"github.com/promptmaster/server/models"
)

// HistoryRepository, prompt optimizasyon geçmişi için interface.
// Geçmiş sadece giriş yapmış kullanıcılar için tutulur — anonim
// optimizasyonlar kaydedilmez.
type HistoryRepository interface {
	Create(ctx context.Context, entry *models.PromptHistory) error
	// ListByUser, kullanıcının geçmişini yeniden eskiye sıralı döner.
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.PromptHistory, error)
}
