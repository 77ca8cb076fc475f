package handlers

import (
	"net/http"

	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/pkg/gemini"
)

// ModelHandler, desteklenen Gemini modellerinin listesini döner.
type ModelHandler struct{}

// NewModelHandler, constructor.
func NewModelHandler() *ModelHandler {
	return &ModelHandler{}
}

// List godoc
// GET /api/v1/models
// Auth gerektirmez — frontend model seçim listesini doldurmak için çağırır.
func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, gemini.SupportedModels())
}
