package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

// StoreRequest contains the parameters for storing a PDF
type StoreRequest struct {
	TenantID     uuid.UUID
	DocumentType templating.DocType
	// DocumentID names the file; a new ID is generated when empty
	DocumentID uuid.UUID
	PDFData    []byte
}

// StoreResult describes a stored PDF
type StoreResult struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Size      int64
}

// PDFStore uploads generated PDFs to object storage and returns presigned links
type PDFStore struct {
	objects   storage.ObjectStorage
	urlExpiry time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewPDFStore creates a PDF store over objects. urlExpiry <= 0 uses the
// backend's default.
func NewPDFStore(objects storage.ObjectStorage, urlExpiry time.Duration, logger *zap.Logger) *PDFStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFStore{
		objects:   objects,
		urlExpiry: urlExpiry,
		logger:    logger,
		now:       time.Now,
	}
}

// Store uploads a PDF under documents/{tenant}/{doc type}/{yyyy}/{mm}/{id}.pdf
func (s *PDFStore) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.TenantID == uuid.Nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "tenant ID is required", nil)
	}
	if len(req.PDFData) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}

	docID := req.DocumentID
	if docID == uuid.Nil {
		docID = uuid.New()
	}
	key := s.objectKey(req.TenantID, req.DocumentType, docID)

	if err := s.objects.Upload(ctx, key, req.PDFData, pdfContentType); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to upload PDF", err)
	}

	url, expiresAt, err := s.objects.GenerateDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create download link", err)
	}

	s.logger.Info("PDF stored",
		zap.String("key", key),
		zap.Int("size", len(req.PDFData)))

	return &StoreResult{
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
		Size:      int64(len(req.PDFData)),
	}, nil
}

// Delete removes a stored PDF
func (s *PDFStore) Delete(ctx context.Context, key string) error {
	if err := s.objects.DeleteObject(ctx, key); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF", err)
	}
	return nil
}

func (s *PDFStore) objectKey(tenantID uuid.UUID, docType templating.DocType, docID uuid.UUID) string {
	kind := strings.ToLower(docType.String())
	if kind == "" {
		kind = "document"
	}
	now := s.now().UTC()
	return fmt.Sprintf("documents/%s/%s/%d/%02d/%s.pdf", tenantID, kind, now.Year(), now.Month(), docID)
}
