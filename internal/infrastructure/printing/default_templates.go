package printing

import (
	"embed"
	"fmt"

	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFS embed.FS

// BuiltinTemplate is a template shipped with the service. Companies start
// from these until they upload their own.
type BuiltinTemplate struct {
	DocType      templating.DocType
	Name         string
	Description  string
	PaperSize    templating.PaperSize
	Orientation  templating.Orientation
	FilePath     string
	Placeholders []templating.Placeholder
}

var builtinTemplates = []BuiltinTemplate{
	{
		DocType:     templating.DocTypeInvoice,
		Name:        "Tax Invoice - A4",
		Description: "Bilingual tax invoice with line items, VAT summary and ZATCA QR code",
		PaperSize:   templating.PaperSizeA4,
		Orientation: templating.OrientationPortrait,
		FilePath:    "templates/invoice_a4.html",
	},
	{
		DocType:     templating.DocTypeQuotation,
		Name:        "Quotation - A4",
		Description: "Price quotation with line items and validity date",
		PaperSize:   templating.PaperSizeA4,
		Orientation: templating.OrientationPortrait,
		FilePath:    "templates/quotation_a4.html",
	},
	{
		DocType:     templating.DocTypeReceipt,
		Name:        "Payment Receipt - A5",
		Description: "Compact payment receipt",
		PaperSize:   templating.PaperSizeA5,
		Orientation: templating.OrientationPortrait,
		FilePath:    "templates/receipt_a5.html",
	},
	{
		DocType:     templating.DocTypeContract,
		Name:        "Service Agreement - A4",
		Description: "Service agreement with scope, fees and signature block",
		PaperSize:   templating.PaperSizeA4,
		Orientation: templating.OrientationPortrait,
		FilePath:    "templates/contract_a4.html",
		Placeholders: []templating.Placeholder{
			{Key: "contractNumber", Label: "Contract Number", Type: templating.VariableTypeText, Required: true},
			{Key: "serviceDescription", Label: "Service Description", Type: templating.VariableTypeText, Required: true},
			{Key: "startDate", Label: "Start Date", Type: templating.VariableTypeDate, Required: true},
		},
	},
	{
		DocType:     templating.DocTypePowerOfAttorney,
		Name:        "Power of Attorney - A4",
		Description: "Arabic/English power-of-attorney form",
		PaperSize:   templating.PaperSizeA4,
		Orientation: templating.OrientationPortrait,
		FilePath:    "templates/power_of_attorney_a4.html",
		Placeholders: []templating.Placeholder{
			{Key: "principalIdNumber", Label: "Principal ID Number", Type: templating.VariableTypeText, Required: true},
			{Key: "agentName", Label: "Agent Name", Type: templating.VariableTypeText, Required: true},
			{Key: "agentIdNumber", Label: "Agent ID Number", Type: templating.VariableTypeText, Required: true},
			{Key: "authorityScope", Label: "Scope of Authority", Type: templating.VariableTypeText, Required: true},
			{Key: "expiryDate", Label: "Expiry Date", Type: templating.VariableTypeDate, Required: true},
		},
	},
}

// BuiltinTemplates returns all shipped templates
func BuiltinTemplates() []BuiltinTemplate {
	out := make([]BuiltinTemplate, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// BuiltinTemplateFor returns the shipped template for a document type
func BuiltinTemplateFor(docType templating.DocType) (BuiltinTemplate, bool) {
	for _, t := range builtinTemplates {
		if t.DocType == docType {
			return t, true
		}
	}
	return BuiltinTemplate{}, false
}

// Content reads the embedded HTML
func (t BuiltinTemplate) Content() (string, error) {
	content, err := templateFS.ReadFile(t.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to read builtin template %s: %w", t.FilePath, err)
	}
	return string(content), nil
}

// ToDocumentTemplate creates a company-owned copy of the builtin template
func (t BuiltinTemplate) ToDocumentTemplate(tenantID uuid.UUID) (*templating.DocumentTemplate, error) {
	content, err := t.Content()
	if err != nil {
		return nil, err
	}

	tmpl, err := templating.NewDocumentTemplate(tenantID, t.DocType, t.Name, content, t.PaperSize)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Update(t.Name, t.Description); err != nil {
		return nil, err
	}
	if err := tmpl.SetOrientation(t.Orientation); err != nil {
		return nil, err
	}
	if err := tmpl.SetPlaceholders(t.Placeholders); err != nil {
		return nil, err
	}
	return tmpl, nil
}
