package handler

import (
	"github.com/bizdocs/backend/internal/interfaces/http/router"
)

// TemplateRoutes creates the route group for template analysis and management
func TemplateRoutes(h *TemplateHandler) *router.DomainGroup {
	group := router.NewDomainGroup("templates", "/templates")

	group.POST("/analyze", h.Analyze)
	group.POST("/analyze/batch", h.AnalyzeBatch)

	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.POST("/:id/default", h.SetDefault)

	return group
}

// VariableRoutes creates the route group for the variable catalog and registry
func VariableRoutes(h *VariableHandler) *router.DomainGroup {
	group := router.NewDomainGroup("variables", "/variables")

	group.GET("/catalog", h.Catalog)
	group.GET("", h.List)
	group.DELETE("/:key", h.Delete)

	return group
}

// DocumentRoutes creates the route group for HTML and PDF rendering
func DocumentRoutes(h *DocumentHandler) *router.DomainGroup {
	group := router.NewDomainGroup("documents", "/documents")

	group.POST("/render", h.Render)
	group.POST("/pdf", h.GeneratePDF)

	return group
}

// ZATCARoutes creates the route group for e-invoicing helpers
func ZATCARoutes(h *ZATCAHandler) *router.DomainGroup {
	group := router.NewDomainGroup("zatca", "/zatca")

	group.POST("/validate", h.Validate)
	group.POST("/qrcode", h.QRCode)

	return group
}
