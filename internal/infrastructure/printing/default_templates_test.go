package printing

import (
	"context"
	"testing"

	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTemplates_CoverEveryDocType(t *testing.T) {
	for _, docType := range templating.AllDocTypes() {
		tmpl, ok := BuiltinTemplateFor(docType)
		require.True(t, ok, docType)
		assert.True(t, tmpl.PaperSize.IsValid())
		assert.True(t, tmpl.Orientation.IsValid())
	}
}

func TestBuiltinTemplates_AreValidTemplates(t *testing.T) {
	engine := NewTemplateEngine()
	for _, tmpl := range BuiltinTemplates() {
		t.Run(tmpl.FilePath, func(t *testing.T) {
			content, err := tmpl.Content()
			require.NoError(t, err)
			assert.Empty(t, engine.Validate(content))
		})
	}
}

func TestBuiltinTemplates_PlaceholdersAreUsed(t *testing.T) {
	for _, tmpl := range BuiltinTemplates() {
		content, err := tmpl.Content()
		require.NoError(t, err)

		used := templating.DetectVariables(content)
		for _, p := range tmpl.Placeholders {
			assert.Contains(t, used, p.Key, tmpl.FilePath)
		}
	}
}

func TestBuiltinInvoiceTemplate_UsesZATCAQRCode(t *testing.T) {
	tmpl, ok := BuiltinTemplateFor(templating.DocTypeInvoice)
	require.True(t, ok)
	content, err := tmpl.Content()
	require.NoError(t, err)

	assert.Contains(t, templating.DetectVariables(content), "zatcaQRCode")

	out, err := NewTemplateEngine().Render(context.Background(), content, map[string]any{
		"zatcaQRCode": "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `<img src="data:image/png;base64,AAAA" alt="ZATCA QR code">`)
}

func TestBuiltinTemplate_ToDocumentTemplate(t *testing.T) {
	tenantID := uuid.New()
	builtin, ok := BuiltinTemplateFor(templating.DocTypeContract)
	require.True(t, ok)

	tmpl, err := builtin.ToDocumentTemplate(tenantID)
	require.NoError(t, err)

	assert.Equal(t, tenantID, tmpl.TenantID)
	assert.Equal(t, templating.DocTypeContract, tmpl.DocumentType)
	assert.Equal(t, builtin.Description, tmpl.Description)
	assert.Len(t, tmpl.Placeholders, 3)
	assert.True(t, tmpl.CanBeUsed())

	result := tmpl.AnalyzeVariables(nil)
	v, found := result.Find("serviceDescription")
	require.True(t, found)
	assert.True(t, v.Required)
	assert.Equal(t, "Service Description", v.Label)
}
