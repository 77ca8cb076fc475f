package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/services"
)

// TemplateHandler, şablon CRUD endpoint'lerini yöneten struct.
type TemplateHandler struct {
	templateService services.TemplateService
}

// NewTemplateHandler, constructor.
func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// List godoc
// GET /api/v1/templates
// Optional auth: giriş yapmışsa kendi şablonları + varsayılanlar,
// anonim ise sadece varsayılanlar.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.List(r.Context(), optionalUserID(r))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, templates)
}

// Get godoc
// GET /api/v1/templates/{id}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid template id")
		return
	}

	tmpl, err := h.templateService.Get(r.Context(), id, optionalUserID(r))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, tmpl)
}

// Create godoc
// POST /api/v1/templates
// Auth middleware gerektirir.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tmpl, err := h.templateService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, tmpl)
}

// Update godoc
// PUT /api/v1/templates/{id}
// Auth middleware gerektirir — sadece kendi şablonu güncellenebilir.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	id, err := pathID(r)
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid template id")
		return
	}

	var req models.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tmpl, err := h.templateService.Update(r.Context(), id, user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, tmpl)
}

// Delete godoc
// DELETE /api/v1/templates/{id}
// Auth middleware gerektirir — sadece kendi şablonu silinebilir.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	id, err := pathID(r)
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid template id")
		return
	}

	if err := h.templateService.Delete(r.Context(), id, user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "template deleted"})
}

// pathID, Go 1.22 path pattern'ındaki {id} değerini int64 olarak okur.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// optionalUserID, optional-auth endpoint'lerde context'teki kullanıcının
// ID'sini döner. Anonim isteklerde nil.
func optionalUserID(r *http.Request) *int64 {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return &user.ID
}
