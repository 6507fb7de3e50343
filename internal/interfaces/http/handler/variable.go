package handler

import (
	"github.com/bizdocs/backend/internal/application/document"
	"github.com/gin-gonic/gin"
)

// VariableHandler serves the system catalog and the company variable registry
type VariableHandler struct {
	BaseHandler
	service *document.Service
}

// NewVariableHandler creates a new VariableHandler
func NewVariableHandler(service *document.Service) *VariableHandler {
	return &VariableHandler{service: service}
}

// CatalogQuery filters the system catalog
type CatalogQuery struct {
	Common bool `form:"common"`
}

// Catalog handles GET /variables/catalog. ?common=true limits the result to
// the variables suggested in template editors.
func (h *VariableHandler) Catalog(c *gin.Context) {
	var q CatalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindQueryError(c, err)
		return
	}
	h.Success(c, h.service.Catalog(q.Common))
}

// List handles GET /variables
func (h *VariableHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	variables, err := h.service.ListVariables(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variables)
}

// Delete handles DELETE /variables/:key
func (h *VariableHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	if err := h.service.DeleteVariable(c.Request.Context(), tenantID, c.Param("key")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
