package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectVariables(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"empty text", "", []string{}},
		{"no tokens", "<p>Hello</p>", []string{}},
		{"single token", "<p>{{clientName}}</p>", []string{"clientName"}},
		{"duplicates collapse", "{{orderNumber}} {{orderNumber}}", []string{"orderNumber"}},
		{"first occurrence order", "{{b}} {{a}} {{b}} {{c}}", []string{"b", "a", "c"}},
		{"underscore identifiers", "{{_x}} {{due_date}}", []string{"_x", "due_date"}},
		{
			"control tokens and loop collections excluded",
			"{{#if zatcaQRCode}}<img>{{/if}}{{#each items}}<li>{{name}}</li>{{/each}}",
			[]string{"name"},
		},
		{"helper calls excluded", "{{formatCurrency totalAmount}}", []string{}},
		{"nested helper excluded", "{{formatCurrency (multiply price quantity)}}", []string{}},
		{"spaces inside braces excluded", "{{ clientName }}", []string{}},
		{"leading digit excluded", "{{1abc}}", []string{}},
		{"triple braces match inner token", "{{{raw}}}", []string{"raw"}},
		{"unicode identifiers excluded", "{{اسم}}", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectVariables(tt.text))
		})
	}
}

func TestDetectVariables_Idempotent(t *testing.T) {
	text := "{{invoiceNumber}} {{clientName}} {{#if paid}}{{paidAmount}}{{/if}} {{clientName}}"
	first := DetectVariables(text)
	second := DetectVariables(text)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"invoiceNumber", "clientName", "paidAmount"}, first)
}

func TestIsValidVariableKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"clientName", true},
		{"_internal", true},
		{"item2", true},
		{"", false},
		{"2item", false},
		{"client name", false},
		{"#if", false},
		{"a-b", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidVariableKey(tt.key))
		})
	}
}
