package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderError(t *testing.T) {
	cause := errors.New("browser crashed")

	err := NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", cause)
	assert.Equal(t, "chromedp execution failed: browser crashed", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	assert.Equal(t, "HTML content is empty", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestDisabledRenderer(t *testing.T) {
	var r PDFRenderer = DisabledRenderer{}

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "<p>x</p>"})

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeRendererDisabled, renderErr.Code)
	assert.NoError(t, r.Close())
}

func TestEstimatePageCount(t *testing.T) {
	tests := []struct {
		name string
		pdf  string
		want int
	}{
		{"no markers", "%PDF-1.4", 1},
		{"one page", "<< /Type /Pages /Kids [3 0 R] >> << /Type /Page >>", 1},
		{"three pages", "/Type /Pages /Type /Page /Type /Page /Type /Page", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, estimatePageCount([]byte(tt.pdf)))
		})
	}
}
