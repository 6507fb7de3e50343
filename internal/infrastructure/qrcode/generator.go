// Package qrcode renders e-invoicing TLV payloads as PNG QR codes.
package qrcode

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bizdocs/backend/internal/domain/zatca"
	goqrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// PlaceholderDataURL is a 1x1 transparent PNG that documents show in place of
// the QR code when it cannot be generated
const PlaceholderDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// PayloadEncoding selects how the TLV bytes are written into the QR code
type PayloadEncoding string

const (
	PayloadEncodingHex    PayloadEncoding = "hex"
	PayloadEncodingBase64 PayloadEncoding = "base64"
)

// IsValid checks if the PayloadEncoding is a valid value
func (e PayloadEncoding) IsValid() bool {
	return e == PayloadEncodingHex || e == PayloadEncodingBase64
}

// Config controls QR rendering
type Config struct {
	Encoding      PayloadEncoding
	Size          int    // image width and height in pixels
	RecoveryLevel string // low, medium, high, highest
}

// DefaultConfig returns the default QR configuration
func DefaultConfig() Config {
	return Config{
		Encoding:      PayloadEncodingHex,
		Size:          256,
		RecoveryLevel: "medium",
	}
}

// Cache stores rendered images keyed by payload
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, png []byte) error
}

// QRCode is a rendered e-invoicing QR code
type QRCode struct {
	Payload string `json:"payload"`
	PNG     []byte `json:"-"`
	DataURL string `json:"data_url"`
}

// Generator renders invoice QR codes. It is safe for concurrent use.
type Generator struct {
	cfg    Config
	level  goqrcode.RecoveryLevel
	cache  Cache
	logger *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithCache enables caching of rendered images
func WithCache(c Cache) Option {
	return func(g *Generator) {
		g.cache = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator. Unset or invalid config fields fall back
// to DefaultConfig values.
func NewGenerator(cfg Config, opts ...Option) *Generator {
	def := DefaultConfig()
	if !cfg.Encoding.IsValid() {
		cfg.Encoding = def.Encoding
	}
	if cfg.Size <= 0 {
		cfg.Size = def.Size
	}

	g := &Generator{
		cfg:    cfg,
		level:  parseRecoveryLevel(cfg.RecoveryLevel),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Encoding returns the payload encoding written into the QR code
func (g *Generator) Encoding() PayloadEncoding {
	return g.cfg.Encoding
}

// Payload encodes the invoice and returns the string written into the QR code
func (g *Generator) Payload(data zatca.InvoiceData) (string, error) {
	tlv, err := zatca.EncodeTLV(data.Normalized())
	if err != nil {
		return "", err
	}
	if g.cfg.Encoding == PayloadEncodingBase64 {
		return tlv.Base64(), nil
	}
	return tlv.Hex(), nil
}

// Generate validates and encodes the invoice, then renders the QR image.
// Validation and encoding failures are returned as *zatca.ValidationError
// and *zatca.EncodingError. Equal input always yields identical output.
func (g *Generator) Generate(ctx context.Context, data zatca.InvoiceData) (*QRCode, error) {
	payload, err := g.Payload(data)
	if err != nil {
		return nil, err
	}

	key := g.cacheKey(payload)
	if g.cache != nil {
		png, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			g.logger.Warn("QR code cache read failed", zap.Error(err))
		} else if ok {
			return newQRCode(payload, png), nil
		}
	}

	png, err := goqrcode.Encode(payload, g.level, g.cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, png); err != nil {
			g.logger.Warn("QR code cache write failed", zap.Error(err))
		}
	}

	return newQRCode(payload, png), nil
}

// GenerateDataURL returns the QR image as a data URL, or PlaceholderDataURL
// with the error when generation fails
func (g *Generator) GenerateDataURL(ctx context.Context, data zatca.InvoiceData) (string, error) {
	qr, err := g.Generate(ctx, data)
	if err != nil {
		return PlaceholderDataURL, err
	}
	return qr.DataURL, nil
}

func (g *Generator) cacheKey(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%s:%d:%d:%s", g.cfg.Encoding, g.level, g.cfg.Size, hex.EncodeToString(sum[:]))
}

func newQRCode(payload string, png []byte) *QRCode {
	return &QRCode{
		Payload: payload,
		PNG:     png,
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}
}

func parseRecoveryLevel(s string) goqrcode.RecoveryLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return goqrcode.Low
	case "high":
		return goqrcode.High
	case "highest":
		return goqrcode.Highest
	default:
		return goqrcode.Medium
	}
}
