package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrDocType        = attribute.Key("doc_type")
	AttrTemplateSource = attribute.Key("template_source")
	AttrOutcome        = attribute.Key("outcome")
)

// Outcomes recorded on document metrics
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
)

// DocumentMetrics records template analysis, rendering and QR code metrics
type DocumentMetrics struct {
	analyses       *Counter
	variablesNew   *Counter
	rendered       *Counter
	renderDuration *Histogram
	pdfGenerated   *Counter
	pdfDuration    *Histogram
	pdfSize        *Histogram
	qrCodes        *Counter
}

// NewDocumentMetrics registers the document instruments on meter
func NewDocumentMetrics(meter metric.Meter) (*DocumentMetrics, error) {
	m := &DocumentMetrics{}
	var err error

	if m.analyses, err = NewCounter(meter, "bizdocs.template.analyses", "Template variable analyses", "{analysis}"); err != nil {
		return nil, err
	}
	if m.variablesNew, err = NewCounter(meter, "bizdocs.template.variables.new", "Custom variables added to the registry", "{variable}"); err != nil {
		return nil, err
	}
	if m.rendered, err = NewCounter(meter, "bizdocs.documents.rendered", "Documents rendered to HTML", "{document}"); err != nil {
		return nil, err
	}
	if m.renderDuration, err = NewHistogram(meter, "bizdocs.documents.render.duration", "HTML render duration", "s",
		0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1); err != nil {
		return nil, err
	}
	if m.pdfGenerated, err = NewCounter(meter, "bizdocs.pdf.generated", "PDFs generated and stored", "{document}"); err != nil {
		return nil, err
	}
	if m.pdfDuration, err = NewHistogram(meter, "bizdocs.pdf.duration", "PDF render and upload duration", "s",
		0.25, 0.5, 1, 2, 5, 10, 30); err != nil {
		return nil, err
	}
	if m.pdfSize, err = NewHistogram(meter, "bizdocs.pdf.size", "Stored PDF size", "By"); err != nil {
		return nil, err
	}
	if m.qrCodes, err = NewCounter(meter, "bizdocs.zatca.qrcodes", "ZATCA QR codes generated", "{qrcode}"); err != nil {
		return nil, err
	}
	return m, nil
}

// AnalysisCompleted records one analysis and the variables it added
func (m *DocumentMetrics) AnalysisCompleted(ctx context.Context, newVariables int) {
	m.analyses.Inc(ctx)
	if newVariables > 0 {
		m.variablesNew.Add(ctx, int64(newVariables))
	}
}

// DocumentRendered records an HTML render
func (m *DocumentMetrics) DocumentRendered(ctx context.Context, docType, source string, d time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrDocType.String(docType), AttrTemplateSource.String(source), AttrOutcome.String(outcome(err))}
	m.rendered.Inc(ctx, attrs...)
	m.renderDuration.RecordDuration(ctx, d, attrs...)
}

// PDFGenerated records a PDF render and upload
func (m *DocumentMetrics) PDFGenerated(ctx context.Context, docType string, size int64, d time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrDocType.String(docType), AttrOutcome.String(outcome(err))}
	m.pdfGenerated.Inc(ctx, attrs...)
	m.pdfDuration.RecordDuration(ctx, d, attrs...)
	if err == nil {
		m.pdfSize.Record(ctx, float64(size), AttrDocType.String(docType))
	}
}

// QRCodeGenerated records a QR code; fallback marks a placeholder image
func (m *DocumentMetrics) QRCodeGenerated(ctx context.Context, fallback bool) {
	result := OutcomeSuccess
	if fallback {
		result = OutcomeFallback
	}
	m.qrCodes.Inc(ctx, AttrOutcome.String(result))
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
