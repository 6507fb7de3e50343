package templating

// DocType represents the kind of business document a template produces
type DocType string

const (
	DocTypeInvoice         DocType = "INVOICE"           // Tax invoice (ZATCA QR)
	DocTypeQuotation       DocType = "QUOTATION"         // Price quotation
	DocTypeReceipt         DocType = "RECEIPT"           // Payment receipt
	DocTypeContract        DocType = "CONTRACT"          // Service or sales contract
	DocTypePowerOfAttorney DocType = "POWER_OF_ATTORNEY" // Power-of-attorney form
)

// IsValid checks if the DocType is a valid value
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeInvoice, DocTypeQuotation, DocTypeReceipt, DocTypeContract, DocTypePowerOfAttorney:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}

// DisplayName returns the English display name for DocType
func (d DocType) DisplayName() string {
	switch d {
	case DocTypeInvoice:
		return "Tax Invoice"
	case DocTypeQuotation:
		return "Quotation"
	case DocTypeReceipt:
		return "Receipt"
	case DocTypeContract:
		return "Contract"
	case DocTypePowerOfAttorney:
		return "Power of Attorney"
	default:
		return string(d)
	}
}

// RequiresZATCAQRCode returns true for documents that must carry the e-invoicing QR code
func (d DocType) RequiresZATCAQRCode() bool {
	return d == DocTypeInvoice
}

// AllDocTypes returns all valid DocType values
func AllDocTypes() []DocType {
	return []DocType{
		DocTypeInvoice, DocTypeQuotation, DocTypeReceipt, DocTypeContract, DocTypePowerOfAttorney,
	}
}

// PaperSize represents the output paper size
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"     // 210mm x 297mm
	PaperSizeA5     PaperSize = "A5"     // 148mm x 210mm
	PaperSizeLetter PaperSize = "LETTER" // 216mm x 279mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeLetter:
		return 216, 279
	default:
		return 210, 297
	}
}

// AllPaperSizes returns all valid PaperSize values
func AllPaperSizes() []PaperSize {
	return []PaperSize{PaperSizeA4, PaperSizeA5, PaperSizeLetter}
}

// Orientation represents the page orientation
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// TemplateStatus represents the status of a document template
type TemplateStatus string

const (
	TemplateStatusActive   TemplateStatus = "ACTIVE"
	TemplateStatusInactive TemplateStatus = "INACTIVE"
)

// IsValid checks if the TemplateStatus is a valid value
func (s TemplateStatus) IsValid() bool {
	return s == TemplateStatusActive || s == TemplateStatusInactive
}

// String returns the string representation of TemplateStatus
func (s TemplateStatus) String() string {
	return string(s)
}
