package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Template, bir prompt şablonunu temsil eder.
//
// UserID nil ise şablon sistem tarafından seed edilmiş bir "default"
// şablondur — her kullanıcı okuyabilir ama kimse değiştiremez/silemez.
type Template struct {
	ID          int64      `json:"template_id"`
	UserID      *int64     `json:"user_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Content     string     `json:"content"`
	IsDefault   bool       `json:"is_default"`
	Category    *string    `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// CreateTemplateRequest, yeni şablon oluşturma isteği.
type CreateTemplateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Content     string  `json:"content"`
	Category    *string `json:"category"`
}

// Validate, CreateTemplateRequest geçerlilik kontrolü.
// Boşluklardan arındırır; opsiyonel alanlar boşsa nil'e çevrilir.
func (r *CreateTemplateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("name must be between 1 and 100 characters")
	}

	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("content is required")
	}

	r.Description = normalizeOptional(r.Description)
	r.Category = normalizeOptional(r.Category)

	if r.Description != nil && utf8.RuneCountInString(*r.Description) > 500 {
		return fmt.Errorf("description must be at most 500 characters")
	}
	if r.Category != nil && utf8.RuneCountInString(*r.Category) > 50 {
		return fmt.Errorf("category must be at most 50 characters")
	}

	return nil
}

// UpdateTemplateRequest, şablon güncelleme isteği.
// Tüm alanlar opsiyoneldir — sadece gönderilen alanlar güncellenir (partial update).
type UpdateTemplateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Category    *string `json:"category"`
}

// Validate, UpdateTemplateRequest geçerlilik kontrolü.
func (r *UpdateTemplateRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		nameLen := utf8.RuneCountInString(trimmed)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("name must be between 1 and 100 characters")
		}
		r.Name = &trimmed
	}
	if r.Content != nil {
		trimmed := strings.TrimSpace(*r.Content)
		if trimmed == "" {
			return fmt.Errorf("content must not be empty")
		}
		r.Content = &trimmed
	}
	return nil
}

// normalizeOptional, opsiyonel string alanı trimler; boş kalırsa nil döner.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
