// Package printing turns document templates into HTML and PDF.
//
// TemplateEngine renders the {{variable}} syntax against a flat data
// context built by DocumentData.Context. ChromedpRenderer prints the HTML
// through headless Chrome and PDFStore uploads the result to object storage.
//
//	engine := NewTemplateEngine(WithMissingValuePolicy(MissingValueStrict))
//	html, err := engine.Render(ctx, tmpl.Content, data.Context(time.Now()))
//	if err != nil {
//	    return err
//	}
//	pdf, err := renderer.Render(ctx, &RenderRequest{HTML: html, PaperSize: tmpl.PaperSize})
package printing
