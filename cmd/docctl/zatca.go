package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bizdocs/backend/internal/domain/zatca"
	"github.com/bizdocs/backend/internal/infrastructure/qrcode"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// invoiceFile is the YAML form of the invoice fields a QR code carries.
// Amounts are strings so that no precision is lost.
type invoiceFile struct {
	SellerName  string `yaml:"seller_name"`
	VATNumber   string `yaml:"vat_number"`
	Timestamp   string `yaml:"timestamp"`
	TotalAmount string `yaml:"total_amount"`
	VATAmount   string `yaml:"vat_amount"`
}

func zatcaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zatca",
		Short: "Validate, encode and decode e-invoicing QR payloads",
	}

	cmd.AddCommand(zatcaValidateCmd())
	cmd.AddCommand(zatcaEncodeCmd())
	cmd.AddCommand(zatcaDecodeCmd())
	cmd.AddCommand(zatcaQRCodeCmd())

	return cmd
}

func zatcaValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <invoice.yaml>",
		Short: "Check invoice data against the e-invoicing rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadInvoice(args[0])
			if err != nil {
				return err
			}
			result := zatca.Validate(data)
			if err := writeReport(cmd.OutOrStdout(), "yaml", result); err != nil {
				return err
			}
			if !result.Valid {
				return errors.New("invoice data is invalid")
			}
			return nil
		},
	}
}

func zatcaEncodeCmd() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "encode <invoice.yaml>",
		Short: "Print the TLV payload for an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := qrcode.PayloadEncoding(encoding)
			if !enc.IsValid() {
				return fmt.Errorf("unsupported encoding %q (use hex or base64)", encoding)
			}
			data, err := loadInvoice(args[0])
			if err != nil {
				return err
			}
			tlv, err := zatca.EncodeTLV(data)
			if err != nil {
				return err
			}
			payload := tlv.Hex()
			if enc == qrcode.PayloadEncodingBase64 {
				payload = tlv.Base64()
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}

	cmd.Flags().StringVarP(&encoding, "encoding", "e", string(qrcode.PayloadEncodingHex), "payload encoding (hex, base64)")
	return cmd
}

func zatcaDecodeCmd() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "decode <payload>",
		Short: "Decode a TLV payload read from a QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := strings.TrimSpace(args[0])

			var (
				decoded zatca.DecodedInvoice
				err     error
			)
			switch qrcode.PayloadEncoding(encoding) {
			case qrcode.PayloadEncodingHex:
				decoded, err = zatca.DecodeTLVHex(payload)
			case qrcode.PayloadEncodingBase64:
				decoded, err = zatca.DecodeTLVBase64(payload)
			default:
				return fmt.Errorf("unsupported encoding %q (use hex or base64)", encoding)
			}
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), "yaml", invoiceFile{
				SellerName:  decoded.SellerName,
				VATNumber:   decoded.VATNumber,
				Timestamp:   decoded.Timestamp,
				TotalAmount: decoded.TotalAmount,
				VATAmount:   decoded.VATAmount,
			})
		},
	}

	cmd.Flags().StringVarP(&encoding, "encoding", "e", string(qrcode.PayloadEncodingHex), "payload encoding (hex, base64)")
	return cmd
}

func zatcaQRCodeCmd() *cobra.Command {
	var (
		encoding string
		size     int
		out      string
	)

	cmd := &cobra.Command{
		Use:   "qrcode <invoice.yaml>",
		Short: "Render the invoice QR code as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadInvoice(args[0])
			if err != nil {
				return err
			}
			generator := qrcode.NewGenerator(qrcode.Config{
				Encoding:      qrcode.PayloadEncoding(encoding),
				Size:          size,
				RecoveryLevel: "medium",
			})
			qr, err := generator.Generate(cmd.Context(), data)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, qr.PNG, 0o644); err != nil {
				return fmt.Errorf("failed to write QR code: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(qr.PNG))
			return nil
		},
	}

	cmd.Flags().StringVarP(&encoding, "encoding", "e", string(qrcode.PayloadEncodingHex), "payload encoding (hex, base64)")
	cmd.Flags().IntVar(&size, "size", 256, "image width and height in pixels")
	cmd.Flags().StringVarP(&out, "out", "O", "zatca-qr.png", "output PNG file")
	return cmd
}

func loadInvoice(path string) (zatca.InvoiceData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return zatca.InvoiceData{}, fmt.Errorf("failed to read invoice: %w", err)
	}
	var f invoiceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return zatca.InvoiceData{}, fmt.Errorf("failed to parse invoice %s: %w", path, err)
	}

	total, err := parseAmount("total_amount", f.TotalAmount)
	if err != nil {
		return zatca.InvoiceData{}, err
	}
	vat, err := parseAmount("vat_amount", f.VATAmount)
	if err != nil {
		return zatca.InvoiceData{}, err
	}

	return zatca.InvoiceData{
		SellerName:  f.SellerName,
		VATNumber:   f.VATNumber,
		Timestamp:   f.Timestamp,
		TotalAmount: total,
		VATAmount:   vat,
	}.Normalized(), nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q", field, value)
	}
	return d, nil
}
