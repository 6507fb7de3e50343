package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bizdocs/backend/internal/infrastructure/auth"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const validInvoiceYAML = `seller_name: Acme Contracting
vat_number: "310122393500003"
timestamp: "2024-01-15T10:30:00Z"
total_amount: "1150.00"
vat_amount: "150.00"
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func reportKeys(vars []reportVariable) []string {
	keys := make([]string, len(vars))
	for i, v := range vars {
		keys[i] = v.Key
	}
	return keys
}

func TestAnalyze(t *testing.T) {
	tmpl := writeFile(t, "quote.html", "<p>{{clientName}}</p><p>{{siteAddress}}</p><p>{{permitNumber}}</p>")
	registry := writeFile(t, "registry.yaml", `variables:
  - key: siteAddress
    label: Site
    type: text
    usage_count: 3
`)

	out, err := run(t, "analyze", "--registry", registry, tmpl)
	require.NoError(t, err)

	var report analysisReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, []string{"clientName", "siteAddress", "permitNumber"}, reportKeys(report.Detected))
	assert.Equal(t, []string{"permitNumber"}, reportKeys(report.New))
	assert.Equal(t, "system", report.Detected[0].Category)
}

func TestAnalyze_MergesFilesAsJSON(t *testing.T) {
	first := writeFile(t, "a.html", "{{clientName}} {{siteAddress}}")
	second := writeFile(t, "b.html", "{{siteAddress}} {{permitNumber}}")

	out, err := run(t, "analyze", "-o", "json", first, second)
	require.NoError(t, err)

	var report analysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{first, second}, report.Files)
	assert.Equal(t, []string{"clientName", "siteAddress", "permitNumber"}, reportKeys(report.Detected))
	assert.Equal(t, []string{"siteAddress", "permitNumber"}, reportKeys(report.New))
}

func TestAnalyze_ReportsSyntaxErrors(t *testing.T) {
	tmpl := writeFile(t, "broken.html", "{{#each items}}{{description}}")

	out, err := run(t, "analyze", tmpl)
	require.NoError(t, err)

	var report analysisReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	require.Len(t, report.SyntaxErrors, 1)
	assert.True(t, strings.HasPrefix(report.SyntaxErrors[0], tmpl+": line "))
}

func TestAnalyze_Errors(t *testing.T) {
	tmpl := writeFile(t, "quote.html", "{{clientName}}")

	_, err := run(t, "analyze", "-o", "xml", tmpl)
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = run(t, "analyze", filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorContains(t, err, "failed to read template")

	_, err = run(t, "analyze")
	assert.Error(t, err)
}

func TestZATCA_EncodeDecode(t *testing.T) {
	invoice := writeFile(t, "invoice.yaml", validInvoiceYAML)

	for _, encoding := range []string{"hex", "base64"} {
		t.Run(encoding, func(t *testing.T) {
			payload, err := run(t, "zatca", "encode", "-e", encoding, invoice)
			require.NoError(t, err)

			out, err := run(t, "zatca", "decode", "-e", encoding, strings.TrimSpace(payload))
			require.NoError(t, err)

			var decoded invoiceFile
			require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
			assert.Equal(t, invoiceFile{
				SellerName:  "Acme Contracting",
				VATNumber:   "310122393500003",
				Timestamp:   "2024-01-15T10:30:00Z",
				TotalAmount: "1150.00",
				VATAmount:   "150.00",
			}, decoded)
		})
	}
}

func TestZATCA_EncodeNormalizesDate(t *testing.T) {
	invoice := writeFile(t, "invoice.yaml", strings.Replace(validInvoiceYAML, `"2024-01-15T10:30:00Z"`, `"2024-01-15"`, 1))

	payload, err := run(t, "zatca", "encode", invoice)
	require.NoError(t, err)

	out, err := run(t, "zatca", "decode", strings.TrimSpace(payload))
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-15T00:00:00Z")
}

func TestZATCA_Validate(t *testing.T) {
	valid := writeFile(t, "valid.yaml", validInvoiceYAML)
	out, err := run(t, "zatca", "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "valid: true")

	invalid := writeFile(t, "invalid.yaml", strings.Replace(validInvoiceYAML, "310122393500003", "123", 1))
	out, err = run(t, "zatca", "validate", invalid)
	assert.EqualError(t, err, "invoice data is invalid")
	assert.Contains(t, out, "valid: false")
}

func TestZATCA_BadInput(t *testing.T) {
	invoice := writeFile(t, "invoice.yaml", strings.Replace(validInvoiceYAML, `"1150.00"`, `"lots"`, 1))
	_, err := run(t, "zatca", "encode", invoice)
	assert.ErrorContains(t, err, "total_amount: invalid amount")

	valid := writeFile(t, "valid.yaml", validInvoiceYAML)
	_, err = run(t, "zatca", "encode", "-e", "base32", valid)
	assert.ErrorContains(t, err, "unsupported encoding")

	_, err = run(t, "zatca", "decode", "zz")
	assert.Error(t, err)
}

func TestZATCA_QRCode(t *testing.T) {
	invoice := writeFile(t, "invoice.yaml", validInvoiceYAML)
	out := filepath.Join(t.TempDir(), "qr.png")

	msg, err := run(t, "zatca", "qrcode", "--size", "128", "-O", out, invoice)
	require.NoError(t, err)
	assert.Contains(t, msg, "wrote "+out)

	png, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestDevToken(t *testing.T) {
	tenantID := "6f1c2b8e-2d7a-4a39-9d3e-0b6c1f2a7e45"

	out, err := run(t, "dev-token", "--tenant", tenantID, "--username", "ops", "--secret", "local-dev-secret", "--issuer", "bizdocs-identity")
	require.NoError(t, err)

	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: "local-dev-secret", Issuer: "bizdocs-identity"})
	claims, err := verifier.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "ops", claims.Username)
}

func TestDevToken_InvalidTenant(t *testing.T) {
	_, err := run(t, "dev-token", "--tenant", "acme", "--secret", "s", "--issuer", "i")
	assert.ErrorContains(t, err, "invalid --tenant")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
