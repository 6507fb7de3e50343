package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferVariableType(t *testing.T) {
	tests := []struct {
		name     string
		expected VariableType
	}{
		{"unitPrice", VariableTypeCurrency},
		{"shippingFee", VariableTypeCurrency},
		{"deliveryDate", VariableTypeDate},
		{"updatedBy", VariableTypeDate},
		{"itemCount", VariableTypeNumber},
		{"taxRate", VariableTypeCurrency}, // currency keywords are checked first
		{"hasWarranty", VariableTypeBoolean},
		{"signatureImage", VariableTypeImage},
		{"qrLink", VariableTypeImage},
		{"notes", VariableTypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferVariableType(tt.name))
		})
	}
}

func TestInferRequired(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"clientFullName", true},
		{"contactEmail", true},
		{"paymentStatus", true},
		{"nationalId", true},
		{"notes", false},
		{"remarks", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferRequired(tt.name))
		})
	}
}

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"clientFullName", "Client Full Name"},
		{"due_date", "Due date"},
		{"notes", "Notes"},
		{"ABC", "A B C"},
		{"_private", "private"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatLabel(tt.name))
		})
	}
}

func TestClassifyVariable(t *testing.T) {
	t.Run("catalog key becomes system variable", func(t *testing.T) {
		v := ClassifyVariable("clientEmail")
		assert.Equal(t, VariableCategorySystem, v.Category)
		assert.Equal(t, "Client Email", v.Label)
		assert.False(t, v.Required)
		assert.Equal(t, 0, v.UsageCount)
	})

	t.Run("unknown key becomes custom variable", func(t *testing.T) {
		v := ClassifyVariable("projectDeadlineDate")
		assert.Equal(t, VariableCategoryCustom, v.Category)
		assert.Equal(t, "Project Deadline Date", v.Label)
		assert.Equal(t, VariableTypeDate, v.Type)
		assert.True(t, v.Required)
	})
}

func TestAnalyzeTemplateVariables_ExistingDefinitionReused(t *testing.T) {
	existing := []TemplateVariable{{
		Key:        "clientName",
		Label:      "Customer",
		Type:       VariableTypeText,
		Required:   true,
		Category:   VariableCategoryCustom,
		UsageCount: 7,
	}}

	result := AnalyzeTemplateVariables("{{clientName}} {{clientEmail}}", existing, nil)

	require.Len(t, result.DetectedVariables, 2)
	assert.Equal(t, existing[0], result.DetectedVariables[0])
	assert.Equal(t, VariableCategorySystem, result.DetectedVariables[1].Category)
	assert.Equal(t, "clientEmail", result.DetectedVariables[1].Key)
	assert.Empty(t, result.NewVariables)
	assert.NotNil(t, result.NewVariables)
	assert.Equal(t, existing, result.ExistingVariables)

	assert.Equal(t, []string{
		"Found 1 system variables that will be auto-populated",
		"Found 1 custom variables that need user input",
		"1 variables are marked as required and must be provided",
		"Consider adding common variables: currentDate, totalAmount",
	}, result.Recommendations)
}

func TestAnalyzeTemplateVariables_PlaceholderOverridesExisting(t *testing.T) {
	existing := []TemplateVariable{
		{Key: "notes", Label: "Old Notes", Type: VariableTypeText, Category: VariableCategoryCustom, UsageCount: 3},
		{Key: "projectCode", Label: "Project Code", Type: VariableTypeText, Category: VariableCategoryCustom},
	}
	placeholders := []Placeholder{
		{Key: "notes", Label: "Delivery Notes", Type: VariableTypeText, Required: true},
	}

	result := AnalyzeTemplateVariables("{{notes}}", existing, placeholders)

	require.Len(t, result.DetectedVariables, 1)
	notes := result.DetectedVariables[0]
	assert.Equal(t, "Delivery Notes", notes.Label)
	assert.True(t, notes.Required)
	assert.Equal(t, 0, notes.UsageCount)

	require.Len(t, result.ExistingVariables, 2)
	assert.Equal(t, "notes", result.ExistingVariables[0].Key)
	assert.Equal(t, "Delivery Notes", result.ExistingVariables[0].Label)
	assert.Equal(t, "projectCode", result.ExistingVariables[1].Key)
	assert.Empty(t, result.NewVariables)
}

func TestAnalyzeTemplateVariables_NewCustomVariables(t *testing.T) {
	text := "{{currentDate}} {{totalAmount}} {{projectDeadlineDate}} {{remarks}} {{zatcaQRCode}}"

	result := AnalyzeTemplateVariables(text, nil, nil)

	assert.Equal(t,
		[]string{"currentDate", "totalAmount", "projectDeadlineDate", "remarks", "zatcaQRCode"},
		result.DetectedKeys())
	assert.Equal(t, []string{"projectDeadlineDate", "remarks"}, result.NewKeys())
	assert.Empty(t, result.ExistingVariables)

	assert.Equal(t, []string{
		"Found 3 system variables that will be auto-populated",
		"Found 2 custom variables that need user input",
		"1 variables are marked as required and must be provided",
		"Consider making these system variables: projectDeadlineDate",
	}, result.Recommendations)
}

func TestAnalyzeTemplateVariables_Empty(t *testing.T) {
	result := AnalyzeTemplateVariables("<p>static</p>", nil, nil)

	assert.Empty(t, result.DetectedVariables)
	assert.NotNil(t, result.NewVariables)
	assert.Equal(t, []string{"Consider adding common variables: currentDate, totalAmount"}, result.Recommendations)
}

func TestVariableDetectionResult_Find(t *testing.T) {
	result := AnalyzeTemplateVariables("{{invoiceNumber}}", nil, nil)

	v, ok := result.Find("invoiceNumber")
	assert.True(t, ok)
	assert.Equal(t, "Invoice Number", v.Label)

	_, ok = result.Find("missing")
	assert.False(t, ok)
}
