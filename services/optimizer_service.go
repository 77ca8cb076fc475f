package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/pkg/gemini"
	"github.com/promptmaster/server/repository"
)

// defaultHistoryLimit, geçmiş listelemede varsayılan kayıt sayısı.
const defaultHistoryLimit = 50

// OptimizerService, prompt optimizasyon akışının iş kuralları.
//
// Optimizasyon herkese açıktır ama şablon erişimi kullanıcıya göre değişir:
// - Giriş yapmış kullanıcı → sadece KENDİ şablonları
// - Anonim kullanıcı → sadece sistem varsayılanları
//
// Geçmiş sadece giriş yapmış kullanıcılar için yazılır.
type OptimizerService interface {
	// Optimize, userID nil ise anonim istektir.
	Optimize(ctx context.Context, userID *int64, req *models.OptimizeRequest) (*models.OptimizeResponse, error)
	History(ctx context.Context, userID int64) ([]models.PromptHistory, error)
}

// optimizerService, OptimizerService interface'inin implementasyonu.
type optimizerService struct {
	templateRepo repository.TemplateRepository
	historyRepo  repository.HistoryRepository
	generator    gemini.Generator
}

// NewOptimizerService, constructor.
func NewOptimizerService(
	templateRepo repository.TemplateRepository,
	historyRepo repository.HistoryRepository,
	generator gemini.Generator,
) OptimizerService {
	return &optimizerService{
		templateRepo: templateRepo,
		historyRepo:  historyRepo,
		generator:    generator,
	}
}

func (s *optimizerService) Optimize(ctx context.Context, userID *int64, req *models.OptimizeRequest) (*models.OptimizeResponse, error) {
	// 1. Validation (temperature varsayılanı burada atanır)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// 2. Şablonu çöz
	tmpl, err := s.resolveTemplate(ctx, userID, req.TemplateID)
	if err != nil {
		return nil, err
	}

	// 3. Gemini çağrısı — şablon içeriği system instruction olur
	optimized, err := s.generator.GenerateContent(ctx, req.APIKey, gemini.GenerateRequest{
		Model:             req.Model,
		SystemInstruction: tmpl.Content,
		Content:           req.OriginalPrompt,
		Temperature:       *req.Temperature,
		MaxOutputTokens:   req.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrInternal, err.Error())
	}

	// 4. Geçmiş kaydı — sadece giriş yapmış kullanıcı için.
	// Hata optimizasyon sonucunu engellemez, sadece loglanır.
	if userID != nil {
		entry := &models.PromptHistory{
			UserID:          *userID,
			OriginalPrompt:  req.OriginalPrompt,
			OptimizedPrompt: optimized,
			TemplateID:      &req.TemplateID,
			ModelUsed:       req.Model,
			Temperature:     *req.Temperature,
		}
		if err := s.historyRepo.Create(ctx, entry); err != nil {
			log.Printf("[optimizer] failed to save history for user %d: %v", *userID, err)
		}
	}

	return &models.OptimizeResponse{
		OptimizedPrompt:     optimized,
		ImprovementAnalysis: "已根據模板進行優化",
		OriginalPrompt:      req.OriginalPrompt,
	}, nil
}

func (s *optimizerService) History(ctx context.Context, userID int64) ([]models.PromptHistory, error) {
	return s.historyRepo.ListByUser(ctx, userID, defaultHistoryLimit)
}

// resolveTemplate, isteğin şablonunu erişim kuralına göre bulur.
// Giriş yapmış kullanıcı kendi şablonunu, anonim kullanıcı varsayılan
// şablonu kullanabilir — çapraz erişim ErrNotFound'dur.
func (s *optimizerService) resolveTemplate(ctx context.Context, userID *int64, templateID int64) (*models.Template, error) {
	if userID != nil {
		tmpl, err := s.templateRepo.GetOwned(ctx, templateID, *userID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return nil, fmt.Errorf("%w: template not found", pkg.ErrNotFound)
			}
			return nil, err
		}
		return tmpl, nil
	}

	tmpl, err := s.templateRepo.GetForUser(ctx, templateID, nil)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: template not found", pkg.ErrNotFound)
		}
		return nil, err
	}
	if !tmpl.IsDefault {
		return nil, fmt.Errorf("%w: template not found", pkg.ErrNotFound)
	}
	return tmpl, nil
}
