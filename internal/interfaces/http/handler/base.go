package handler

import (
	"errors"
	"net/http"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/zatca"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/bizdocs/backend/internal/interfaces/http/dto"
	"github.com/bizdocs/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getTenantID returns the company resolved by the auth middleware
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetTenantID(c); ok {
		return id, nil
	}
	return uuid.Nil, errors.New("company not found in request context")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// detailedError sends an error whose details list the offending items
func (h *BaseHandler) detailedError(c *gin.Context, code, message string, details []dto.ValidationDetail) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithDetails(code, message, getRequestID(c), details))
}

// HandleError converts service errors to HTTP responses. Unknown errors are
// logged and reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var (
		domainErr  *shared.DomainError
		syntaxErr  *printing.TemplateSyntaxError
		missingErr *printing.MissingVariablesError
		invoiceErr *zatca.ValidationError
		fieldErr   *zatca.EncodingError
		renderErr  *printing.RenderError
	)

	switch {
	case errors.As(err, &domainErr):
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)

	case errors.As(err, &syntaxErr):
		details := make([]dto.ValidationDetail, len(syntaxErr.Problems))
		for i, p := range syntaxErr.Problems {
			details[i] = dto.ValidationDetail{Field: "content", Message: p.String()}
		}
		h.detailedError(c, dto.ErrCodeTemplateSyntax, "Template has syntax errors", details)

	case errors.As(err, &missingErr):
		details := make([]dto.ValidationDetail, len(missingErr.Names))
		for i, name := range missingErr.Names {
			details[i] = dto.ValidationDetail{Field: name, Message: "No value provided"}
		}
		h.detailedError(c, dto.ErrCodeMissingVariables, "Template variables have no value", details)

	case errors.As(err, &invoiceErr):
		details := make([]dto.ValidationDetail, len(invoiceErr.Messages))
		for i, msg := range invoiceErr.Messages {
			details[i] = dto.ValidationDetail{Field: "invoice", Message: msg}
		}
		h.detailedError(c, dto.ErrCodeInvalidInvoice, "Invoice data is not valid for e-invoicing", details)

	case errors.As(err, &fieldErr):
		h.detailedError(c, dto.ErrCodeInvalidInvoice, "Invoice data is not valid for e-invoicing",
			[]dto.ValidationDetail{{Field: fieldErr.Tag.String(), Message: fieldErr.Error()}})

	case errors.As(err, &renderErr):
		h.handleRenderError(c, renderErr)

	default:
		logger.L(c.Request.Context()).Error("Unhandled request error", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}

func (h *BaseHandler) handleRenderError(c *gin.Context, err *printing.RenderError) {
	switch err.Code {
	case printing.ErrCodeRendererDisabled, printing.ErrCodeStorageNotEnabled:
		h.ErrorWithCode(c, dto.ErrCodeServiceUnavailable, err.Message)
	case printing.ErrCodeRenderTimeout:
		h.ErrorWithCode(c, dto.ErrCodeTimeout, err.Message)
	case printing.ErrCodeInvalidHTML, printing.ErrCodeInvalidPaperSize:
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, err.Message)
	default:
		logger.L(c.Request.Context()).Error("PDF rendering failed", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeRenderFailed, "Failed to render document")
	}
}

// bindJSON binds the request body and writes a validation error on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// tenant resolves the company or writes a 401
func (h *BaseHandler) tenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return uuid.Nil, false
	}
	return tenantID, true
}

// pathID parses a UUID path parameter or writes a 400
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindQueryError reports an invalid query string
func (h *BaseHandler) bindQueryError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}
