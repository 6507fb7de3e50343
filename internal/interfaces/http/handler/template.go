package handler

import (
	"github.com/bizdocs/backend/internal/application/document"
	"github.com/gin-gonic/gin"
)

// TemplateHandler handles template analysis and template management endpoints
type TemplateHandler struct {
	BaseHandler
	service *document.Service
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(service *document.Service) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// Analyze handles POST /templates/analyze
func (h *TemplateHandler) Analyze(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req document.AnalyzeTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.AnalyzeTemplate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AnalyzeBatch handles POST /templates/analyze/batch
func (h *TemplateHandler) AnalyzeBatch(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req document.AnalyzeTemplatesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.AnalyzeTemplates(c.Request.Context(), tenantID, req.TemplateIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create handles POST /templates
func (h *TemplateHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req document.CreateTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.service.CreateTemplate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, template)
}

// List handles GET /templates
func (h *TemplateHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req document.ListTemplatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.bindQueryError(c, err)
		return
	}

	result, err := h.service.ListTemplates(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.Size)
}

// Get handles GET /templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	template, err := h.service.GetTemplate(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Update handles PUT /templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req document.UpdateTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.service.UpdateTemplate(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Delete handles DELETE /templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTemplate(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetDefault handles POST /templates/:id/default
func (h *TemplateHandler) SetDefault(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	template, err := h.service.SetDefaultTemplate(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}
