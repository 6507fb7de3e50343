package templating

import (
	"time"
)

// VariableType is the value type of a template variable
type VariableType string

const (
	VariableTypeText     VariableType = "text"
	VariableTypeNumber   VariableType = "number"
	VariableTypeDate     VariableType = "date"
	VariableTypeCurrency VariableType = "currency"
	VariableTypeBoolean  VariableType = "boolean"
	VariableTypeImage    VariableType = "image"
)

// IsValid checks if the VariableType is a valid value
func (t VariableType) IsValid() bool {
	switch t {
	case VariableTypeText, VariableTypeNumber, VariableTypeDate,
		VariableTypeCurrency, VariableTypeBoolean, VariableTypeImage:
		return true
	}
	return false
}

// String returns the string representation of VariableType
func (t VariableType) String() string {
	return string(t)
}

// AllVariableTypes returns all valid VariableType values
func AllVariableTypes() []VariableType {
	return []VariableType{
		VariableTypeText, VariableTypeNumber, VariableTypeDate,
		VariableTypeCurrency, VariableTypeBoolean, VariableTypeImage,
	}
}

// VariableCategory tells whether a variable is populated by the system or by the user
type VariableCategory string

const (
	// VariableCategorySystem variables are auto-populated from company, client and order records
	VariableCategorySystem VariableCategory = "system"
	// VariableCategoryCustom variables need explicit user input
	VariableCategoryCustom VariableCategory = "custom"
)

// IsValid checks if the VariableCategory is a valid value
func (c VariableCategory) IsValid() bool {
	return c == VariableCategorySystem || c == VariableCategoryCustom
}

// String returns the string representation of VariableCategory
func (c VariableCategory) String() string {
	return string(c)
}

// TemplateVariable is a placeholder known to a company's variable registry.
// It is created the first time a template uses it and its UsageCount grows
// every time it is detected again.
type TemplateVariable struct {
	Key         string
	Label       string
	Type        VariableType
	Required    bool
	Category    VariableCategory
	Description string
	UsageCount  int
	LastUsedAt  *time.Time
}

// IsSystem returns true for catalog-backed variables
func (v TemplateVariable) IsSystem() bool {
	return v.Category == VariableCategorySystem
}

// IsCustom returns true for user-defined variables
func (v TemplateVariable) IsCustom() bool {
	return v.Category == VariableCategoryCustom
}

// RecordUsage marks the variable as detected once more
func (v *TemplateVariable) RecordUsage(at time.Time) {
	v.UsageCount++
	v.LastUsedAt = &at
}

// Placeholder is a template-specific declaration of a custom variable
type Placeholder struct {
	Key          string
	Label        string
	Type         VariableType
	Required     bool
	DefaultValue string
}

// ToVariable converts the placeholder into a custom TemplateVariable with no recorded usage
func (p Placeholder) ToVariable() TemplateVariable {
	return TemplateVariable{
		Key:        p.Key,
		Label:      p.Label,
		Type:       p.Type,
		Required:   p.Required,
		Category:   VariableCategoryCustom,
		UsageCount: 0,
	}
}

// VariableDetectionResult is the outcome of analyzing one or more templates
type VariableDetectionResult struct {
	// DetectedVariables holds one entry per unique token found, in first-occurrence order
	DetectedVariables []TemplateVariable
	// ExistingVariables is everything known before the analysis ran
	ExistingVariables []TemplateVariable
	// NewVariables are custom variables seen for the first time
	NewVariables []TemplateVariable
	// Recommendations are human-readable hints for the template author
	Recommendations []string
}

// DetectedKeys returns the keys of DetectedVariables in order
func (r VariableDetectionResult) DetectedKeys() []string {
	return variableKeys(r.DetectedVariables)
}

// NewKeys returns the keys of NewVariables in order
func (r VariableDetectionResult) NewKeys() []string {
	return variableKeys(r.NewVariables)
}

// Find returns the detected variable with the given key
func (r VariableDetectionResult) Find(key string) (TemplateVariable, bool) {
	for _, v := range r.DetectedVariables {
		if v.Key == key {
			return v, true
		}
	}
	return TemplateVariable{}, false
}

func variableKeys(vars []TemplateVariable) []string {
	keys := make([]string, len(vars))
	for i, v := range vars {
		keys[i] = v.Key
	}
	return keys
}
