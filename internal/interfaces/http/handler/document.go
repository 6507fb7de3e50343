package handler

import (
	"github.com/bizdocs/backend/internal/application/document"
	"github.com/gin-gonic/gin"
)

// DocumentHandler renders documents to HTML and PDF
type DocumentHandler struct {
	BaseHandler
	service *document.Service
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service *document.Service) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Render handles POST /documents/render
func (h *DocumentHandler) Render(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req document.RenderDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.RenderDocument(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GeneratePDF handles POST /documents/pdf
func (h *DocumentHandler) GeneratePDF(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req document.GeneratePDFRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.GeneratePDF(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
