package templating

// CatalogEntry describes a system variable that is populated automatically
// from company, client and order records.
type CatalogEntry struct {
	Key          string
	Label        string
	Type         VariableType
	Category     VariableCategory
	Description  string
	ExampleValue string
	IsCommon     bool
}

// ToVariable converts the catalog entry into a system TemplateVariable.
// System variables are never required: the platform always supplies them.
func (e CatalogEntry) ToVariable() TemplateVariable {
	return TemplateVariable{
		Key:         e.Key,
		Label:       e.Label,
		Type:        e.Type,
		Required:    false,
		Category:    VariableCategorySystem,
		Description: e.Description,
		UsageCount:  0,
	}
}

func systemEntry(key, label string, typ VariableType, description, example string, common bool) CatalogEntry {
	return CatalogEntry{
		Key:          key,
		Label:        label,
		Type:         typ,
		Category:     VariableCategorySystem,
		Description:  description,
		ExampleValue: example,
		IsCommon:     common,
	}
}

// systemCatalog is the versioned list of system variables. Order matters:
// recommendations list missing variables in catalog order.
var systemCatalog = []CatalogEntry{
	// Company
	systemEntry("companyName", "Company Name", VariableTypeText, "Legal name of the issuing company", "Acme Trading Co.", true),
	systemEntry("companyNameAr", "Company Name (Arabic)", VariableTypeText, "Arabic legal name of the issuing company", "شركة أكمي للتجارة", false),
	systemEntry("companyEmail", "Company Email", VariableTypeText, "Contact email of the issuing company", "billing@acme.sa", false),
	systemEntry("companyPhone", "Company Phone", VariableTypeText, "Contact phone of the issuing company", "+966 11 123 4567", false),
	systemEntry("companyAddress", "Company Address", VariableTypeText, "Registered address of the issuing company", "King Fahd Rd, Riyadh", false),
	systemEntry("companyVatNumber", "Company VAT Number", VariableTypeText, "15-digit ZATCA VAT registration number", "300000000000003", true),
	systemEntry("companyCrNumber", "Commercial Registration", VariableTypeText, "Commercial registration number", "1010101010", false),
	systemEntry("companyLogo", "Company Logo", VariableTypeImage, "Company logo image URL", "https://cdn.example.com/logo.png", false),

	// Client
	systemEntry("clientName", "Client Name", VariableTypeText, "Name of the client", "Ahmed Al-Harbi", true),
	systemEntry("clientEmail", "Client Email", VariableTypeText, "Email address of the client", "ahmed@example.com", true),
	systemEntry("clientPhone", "Client Phone", VariableTypeText, "Phone number of the client", "+966 50 123 4567", false),
	systemEntry("clientAddress", "Client Address", VariableTypeText, "Postal address of the client", "Olaya St, Riyadh", false),
	systemEntry("clientVatNumber", "Client VAT Number", VariableTypeText, "VAT number of the client, if registered", "310000000000003", false),

	// Document
	systemEntry("orderNumber", "Order Number", VariableTypeText, "Reference number of the order", "ORD-2024-0001", true),
	systemEntry("invoiceNumber", "Invoice Number", VariableTypeText, "Sequential invoice number", "INV-2024-0001", true),
	systemEntry("currentDate", "Current Date", VariableTypeDate, "Date the document is generated", "2024-01-15", true),
	systemEntry("orderDate", "Order Date", VariableTypeDate, "Date the order was placed", "2024-01-10", false),
	systemEntry("dueDate", "Due Date", VariableTypeDate, "Payment due date", "2024-02-15", false),
	systemEntry("items", "Line Items", VariableTypeText, "Order line items, used with {{#each items}}", "[...]", false),

	// Amounts
	systemEntry("subtotal", "Subtotal", VariableTypeCurrency, "Sum of line items before VAT", "869.57", false),
	systemEntry("vatRate", "VAT Rate", VariableTypeNumber, "VAT rate in percent", "15", false),
	systemEntry("vatAmount", "VAT Amount", VariableTypeCurrency, "VAT charged on the order", "130.43", true),
	systemEntry("discountAmount", "Discount Amount", VariableTypeCurrency, "Discount applied to the order", "0.00", false),
	systemEntry("totalAmount", "Total Amount", VariableTypeCurrency, "Grand total including VAT", "1000.00", true),
	systemEntry("paidAmount", "Paid Amount", VariableTypeCurrency, "Amount already paid", "500.00", false),
	systemEntry("balanceDue", "Balance Due", VariableTypeCurrency, "Outstanding balance", "500.00", false),
	systemEntry("currency", "Currency", VariableTypeText, "ISO 4217 currency code", "SAR", false),

	// E-invoicing
	systemEntry("zatcaQRCode", "ZATCA QR Code", VariableTypeImage, "ZATCA e-invoicing QR code image", "data:image/png;base64,...", true),
}

// systemCatalogIndex maps catalog keys to entries for constant-time lookup
var systemCatalogIndex = buildCatalogIndex(systemCatalog)

func buildCatalogIndex(entries []CatalogEntry) map[string]CatalogEntry {
	index := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		index[e.Key] = e
	}
	return index
}

// SystemCatalog returns a copy of the system variable catalog in catalog order
func SystemCatalog() []CatalogEntry {
	out := make([]CatalogEntry, len(systemCatalog))
	copy(out, systemCatalog)
	return out
}

// CommonSystemVariables returns the catalog entries flagged as common
func CommonSystemVariables() []CatalogEntry {
	var out []CatalogEntry
	for _, e := range systemCatalog {
		if e.IsCommon {
			out = append(out, e)
		}
	}
	return out
}

// LookupSystemVariable finds a catalog entry by exact key
func LookupSystemVariable(key string) (CatalogEntry, bool) {
	e, ok := systemCatalogIndex[key]
	return e, ok
}

// IsSystemVariable reports whether key is a catalog key
func IsSystemVariable(key string) bool {
	_, ok := systemCatalogIndex[key]
	return ok
}
