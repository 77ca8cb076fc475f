// Package gemini, Google Gemini API ile prompt optimizasyonu için istemci katmanı.
//
// API anahtarı server'da tutulmaz — her istek kullanıcının KENDİ anahtarıyla
// gelir ve client istek başına oluşturulur. Bu yüzden interface method'u
// apiKey parametresi alır; struct'ta saklanan bir client yoktur.
//
// Generator interface'i service katmanının bağımlılığıdır — testlerde
// gerçek API'ye gitmeyen fake bir implementasyon geçilir.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/promptmaster/server/models"
)

// defaultMaxOutputTokens, istek sınır belirtmediğinde kullanılır.
const defaultMaxOutputTokens = 2048

// GenerateRequest, tek bir içerik üretim çağrısının parametreleri.
type GenerateRequest struct {
	Model             string
	SystemInstruction string // şablon içeriği buraya gider
	Content           string // kullanıcının ham prompt'u
	Temperature       float64
	MaxOutputTokens   *int32
}

// Generator, Gemini içerik üretimi için interface.
type Generator interface {
	GenerateContent(ctx context.Context, apiKey string, req GenerateRequest) (string, error)
}

// geminiGenerator, Generator interface'inin google.golang.org/genai implementasyonu.
type geminiGenerator struct{}

// NewGenerator, constructor fonksiyonu.
func NewGenerator() Generator {
	return &geminiGenerator{}
}

func (g *geminiGenerator) GenerateContent(ctx context.Context, apiKey string, req GenerateRequest) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", fmt.Errorf("api key is required")
	}

	// Client istek başına oluşturulur — anahtar kullanıcıya aittir,
	// istek bitince referans kalmaz.
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	maxTokens := int32(defaultMaxOutputTokens)
	if req.MaxOutputTokens != nil {
		maxTokens = *req.MaxOutputTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: maxTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Content), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}

	return text, nil
}

// SupportedModels, frontend'in model seçiminde gösterdiği sabit katalog.
// Upstream'den dinamik liste çekilmez — desteklenen modeller bilinçli
// olarak sınırlı tutulur.
func SupportedModels() []models.ModelInfo {
	return []models.ModelInfo{
		{Name: "gemini-2.5-pro", DisplayName: "Gemini 2.5 Pro"},
		{Name: "gemini-2.5-flash", DisplayName: "Gemini 2.5 Flash"},
		{Name: "gemini-2.5-flash-lite-preview-06-17", DisplayName: "Gemini 2.5 Flash Lite"},
	}
}
