package printing

import (
	"bytes"
	"context"
	"time"

	"github.com/bizdocs/backend/internal/domain/templating"
)

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML        string
	PaperSize   templating.PaperSize
	Orientation templating.Orientation
	// Margins in millimeters
	Margins templating.Margins
	// Title for the PDF document metadata
	Title string
	// Locale is a BCP 47 tag; right-to-left languages set dir="rtl"
	Locale     string
	HeaderHTML string
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout     = "RENDER_TIMEOUT"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeInvalidHTML       = "INVALID_HTML"
	ErrCodeInvalidPaperSize  = "INVALID_PAPER_SIZE"
	ErrCodeRendererDisabled  = "RENDERER_DISABLED"
	ErrCodeStorageFailed     = "STORAGE_FAILED"
	ErrCodeStorageNotEnabled = "STORAGE_NOT_ENABLED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// DisabledRenderer is used when PDF rendering is turned off in configuration
type DisabledRenderer struct{}

// Render always fails with ErrCodeRendererDisabled
func (DisabledRenderer) Render(context.Context, *RenderRequest) (*RenderResult, error) {
	return nil, NewRenderError(ErrCodeRendererDisabled, "PDF rendering is disabled", nil)
}

// Close is a no-op
func (DisabledRenderer) Close() error {
	return nil
}

// estimatePageCount counts page objects in PDF data; "/Type /Pages" is the
// page tree root and is not a page.
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page")) - bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}

var _ PDFRenderer = DisabledRenderer{}
