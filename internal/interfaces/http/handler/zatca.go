package handler

import (
	"github.com/bizdocs/backend/internal/application/document"
	"github.com/gin-gonic/gin"
)

// ZATCAHandler exposes e-invoicing validation and QR code generation
type ZATCAHandler struct {
	BaseHandler
	service *document.Service
}

// NewZATCAHandler creates a new ZATCAHandler
func NewZATCAHandler(service *document.Service) *ZATCAHandler {
	return &ZATCAHandler{service: service}
}

// Validate handles POST /zatca/validate. Rule violations are part of a 200
// response; only malformed JSON is rejected.
func (h *ZATCAHandler) Validate(c *gin.Context) {
	var req document.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, h.service.ValidateInvoice(req))
}

// QRCode handles POST /zatca/qrcode
func (h *ZATCAHandler) QRCode(c *gin.Context) {
	var req document.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	qr, err := h.service.GenerateInvoiceQR(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, qr)
}
