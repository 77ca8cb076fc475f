package services

import (
	"context"
	"fmt"

	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/repository"
)

// TemplateService, prompt şablonlarının iş kuralları.
//
// Görünürlük kuralları:
// - Listeleme/okuma: kullanıcının kendi şablonları + sistem varsayılanları
// - Oluşturma/güncelleme/silme: sadece kullanıcının KENDİ şablonları —
//   varsayılan şablonlar salt okunurdur
type TemplateService interface {
	// List, userID nil ise (anonim) sadece varsayılanları döner.
	List(ctx context.Context, userID *int64) ([]models.Template, error)
	Get(ctx context.Context, id int64, userID *int64) (*models.Template, error)
	Create(ctx context.Context, userID int64, req *models.CreateTemplateRequest) (*models.Template, error)
	Update(ctx context.Context, id int64, userID int64, req *models.UpdateTemplateRequest) (*models.Template, error)
	Delete(ctx context.Context, id int64, userID int64) error
}

// templateService, TemplateService interface'inin implementasyonu.
type templateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService, constructor.
func NewTemplateService(templateRepo repository.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) List(ctx context.Context, userID *int64) ([]models.Template, error) {
	return s.templateRepo.ListForUser(ctx, userID)
}

func (s *templateService) Get(ctx context.Context, id int64, userID *int64) (*models.Template, error) {
	return s.templateRepo.GetForUser(ctx, id, userID)
}

func (s *templateService) Create(ctx context.Context, userID int64, req *models.CreateTemplateRequest) (*models.Template, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	tmpl := &models.Template{
		UserID:      &userID,
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
	}

	if err := s.templateRepo.Create(ctx, tmpl); err != nil {
		return nil, err // ErrAlreadyExists olabilir (isim çakışması)
	}

	return tmpl, nil
}

// Update, partial update uygular: sadece gönderilen alanlar değişir.
// Mevcut şablon önce GetOwned ile okunur — hem sahiplik kontrolü yapılır
// hem de gönderilmeyen alanların mevcut değerleri korunur.
func (s *templateService) Update(ctx context.Context, id int64, userID int64, req *models.UpdateTemplateRequest) (*models.Template, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	tmpl, err := s.templateRepo.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err // varsayılanlar ve başkasının şablonları → ErrNotFound
	}

	if req.Name != nil {
		tmpl.Name = *req.Name
	}
	if req.Description != nil {
		tmpl.Description = req.Description
	}
	if req.Content != nil {
		tmpl.Content = *req.Content
	}
	if req.Category != nil {
		tmpl.Category = req.Category
	}

	if err := s.templateRepo.Update(ctx, tmpl); err != nil {
		return nil, err
	}

	// updated_at DB'de CURRENT_TIMESTAMP ile yazıldı — güncel halini oku
	return s.templateRepo.GetOwned(ctx, id, userID)
}

func (s *templateService) Delete(ctx context.Context, id int64, userID int64) error {
	return s.templateRepo.Delete(ctx, id, userID)
}
