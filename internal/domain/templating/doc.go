// Package templating contains the document templating bounded context.
// It owns the system variable catalog, detection of {{variable}} tokens in
// template HTML, classification of detected tokens into system and custom
// variables, and the DocumentTemplate aggregate that companies use to produce
// invoices, contracts and power-of-attorney forms.
package templating
