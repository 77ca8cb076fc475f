package repository

import (
	"context"

	"github.com/promptmaster/server/models"
)

// TemplateRepository, prompt şablonu veritabanı işlemleri için interface.
//
// Görünürlük modeli:
// - user_id NULL + is_default=1 → sistem şablonu, herkes okuyabilir
// - user_id dolu → kullanıcının kendi şablonu, sadece sahibi okur/yazar
type TemplateRepository interface {
	// ListForUser, kullanıcının kendi şablonları + sistem varsayılanlarını döner.
	// userID nil ise (anonim) sadece varsayılanlar döner.
	ListForUser(ctx context.Context, userID *int64) ([]models.Template, error)
	// GetForUser, id'li şablonu döner — kullanıcının kendisine ait
	// veya sistem varsayılanı değilse ErrNotFound.
	GetForUser(ctx context.Context, id int64, userID *int64) (*models.Template, error)
	// GetOwned, sadece kullanıcının KENDİ şablonunu döner (update/delete için).
	// Varsayılan şablonlar düzenlenemez — onlar için de ErrNotFound.
	GetOwned(ctx context.Context, id int64, userID int64) (*models.Template, error)
	Create(ctx context.Context, tmpl *models.Template) error
	Update(ctx context.Context, tmpl *models.Template) error
	Delete(ctx context.Context, id int64, userID int64) error
}
