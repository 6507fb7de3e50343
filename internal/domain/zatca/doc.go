// Package zatca implements the Saudi e-invoicing (ZATCA phase 1) QR payload:
// invoice data validation and the tag-length-value encoding that is printed
// as a QR code on simplified tax invoices.
//
// The payload carries five fields in fixed tag order:
//
//	1 seller name
//	2 VAT registration number
//	3 invoice timestamp (ISO 8601)
//	4 invoice total including VAT
//	5 VAT total
//
// Each record is one tag byte, one length byte holding the UTF-8 byte count
// of the value, then the value bytes. Values longer than 255 bytes cannot be
// represented and are rejected with an EncodingError.
package zatca
