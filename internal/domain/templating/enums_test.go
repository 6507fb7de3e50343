package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocType_IsValid(t *testing.T) {
	for _, dt := range AllDocTypes() {
		assert.True(t, dt.IsValid(), dt.String())
	}
	assert.False(t, DocType("").IsValid())
	assert.False(t, DocType("SALES_ORDER").IsValid())
}

func TestDocType_RequiresZATCAQRCode(t *testing.T) {
	assert.True(t, DocTypeInvoice.RequiresZATCAQRCode())
	assert.False(t, DocTypeQuotation.RequiresZATCAQRCode())
	assert.False(t, DocTypePowerOfAttorney.RequiresZATCAQRCode())
}

func TestDocType_DisplayName(t *testing.T) {
	assert.Equal(t, "Tax Invoice", DocTypeInvoice.DisplayName())
	assert.Equal(t, "Power of Attorney", DocTypePowerOfAttorney.DisplayName())
	assert.Equal(t, "OTHER", DocType("OTHER").DisplayName())
}

func TestVariableType_IsValid(t *testing.T) {
	for _, vt := range AllVariableTypes() {
		assert.True(t, vt.IsValid(), vt.String())
	}
	assert.False(t, VariableType("money").IsValid())
}

func TestSystemCatalog(t *testing.T) {
	catalog := SystemCatalog()
	seen := make(map[string]struct{}, len(catalog))
	for _, e := range catalog {
		_, dup := seen[e.Key]
		assert.False(t, dup, "duplicate catalog key %s", e.Key)
		seen[e.Key] = struct{}{}
		assert.Equal(t, VariableCategorySystem, e.Category)
		assert.True(t, e.Type.IsValid())
		assert.True(t, IsValidVariableKey(e.Key))
	}

	// returned slice is a copy
	catalog[0].Label = "changed"
	entry, ok := LookupSystemVariable(catalog[0].Key)
	assert.True(t, ok)
	assert.NotEqual(t, "changed", entry.Label)

	assert.True(t, IsSystemVariable("zatcaQRCode"))
	assert.False(t, IsSystemVariable("ZATCAQRCode"))
	assert.NotEmpty(t, CommonSystemVariables())
}
