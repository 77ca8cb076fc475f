package models

import (
	"fmt"
	"strings"
	"time"
)

// PromptHistory, bir prompt optimizasyonunun kaydıdır.
// Sadece giriş yapmış kullanıcılar için yazılır — anonim istekler iz bırakmaz.
type PromptHistory struct {
	ID              int64     `json:"history_id"`
	UserID          int64     `json:"user_id"`
	OriginalPrompt  string    `json:"original_prompt"`
	OptimizedPrompt string    `json:"optimized_prompt"`
	TemplateID      *int64    `json:"template_id"` // şablon silinmişse NULL
	ModelUsed       string    `json:"model_used"`
	Temperature     float64   `json:"temperature"`
	CreatedAt       time.Time `json:"created_at"`
}

// OptimizeRequest, prompt optimizasyon isteği.
//
// APIKey kullanıcının KENDİ Gemini anahtarıdır — server'da saklanmaz,
// sadece bu isteğin upstream çağrısında kullanılır.
type OptimizeRequest struct {
	APIKey          string   `json:"api_key"`
	OriginalPrompt  string   `json:"original_prompt"`
	TemplateID      int64    `json:"template_id"`
	Model           string   `json:"model"`
	Temperature     *float64 `json:"temperature"`
	MaxOutputTokens *int32   `json:"max_output_tokens"`
}

// defaultTemperature, istek temperature belirtmediğinde kullanılır.
const defaultTemperature = 0.2

// Validate, OptimizeRequest geçerlilik kontrolü.
// Temperature gönderilmemişse varsayılan değer atanır.
func (r *OptimizeRequest) Validate() error {
	if strings.TrimSpace(r.APIKey) == "" {
		return fmt.Errorf("api_key is required")
	}
	if strings.TrimSpace(r.OriginalPrompt) == "" {
		return fmt.Errorf("original_prompt is required")
	}
	if r.TemplateID <= 0 {
		return fmt.Errorf("template_id is required")
	}
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("model is required")
	}

	if r.Temperature == nil {
		t := defaultTemperature
		r.Temperature = &t
	}
	if *r.Temperature < 0.0 || *r.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	return nil
}

// OptimizeResponse, optimizasyon sonucu.
type OptimizeResponse struct {
	OptimizedPrompt     string `json:"optimized_prompt"`
	ImprovementAnalysis string `json:"improvement_analysis"`
	OriginalPrompt      string `json:"original_prompt"`
}

// ModelInfo, frontend'in model seçim listesinde gösterdiği bir Gemini modeli.
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}
