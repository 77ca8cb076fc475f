package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/services"
)

// PromptHandler, prompt optimizasyon endpoint'lerini yöneten struct.
type PromptHandler struct {
	optimizerService services.OptimizerService
}

// NewPromptHandler, constructor.
func NewPromptHandler(optimizerService services.OptimizerService) *PromptHandler {
	return &PromptHandler{optimizerService: optimizerService}
}

// Optimize godoc
// POST /api/v1/prompts/optimize
// Optional auth: anonim kullanıcı sadece varsayılan şablonları kullanabilir,
// giriş yapmış kullanıcı kendi şablonlarını. Geçmiş sadece giriş yapmışsa yazılır.
func (h *PromptHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req models.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.optimizerService.Optimize(r.Context(), optionalUserID(r), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// History godoc
// GET /api/v1/prompts/history
// Auth middleware gerektirir — kullanıcı sadece kendi geçmişini görür.
// Kayıtlar yeniden eskiye sıralıdır.
func (h *PromptHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	entries, err := h.optimizerService.History(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, entries)
}
