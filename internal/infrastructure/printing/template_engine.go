package printing

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

// MissingValuePolicy decides what happens when a variable has no value
type MissingValuePolicy string

const (
	// MissingValueLenient substitutes the fallback value
	MissingValueLenient MissingValuePolicy = "lenient"
	// MissingValueStrict fails the render with a *MissingVariablesError
	MissingValueStrict MissingValuePolicy = "strict"
)

// IsValid checks if the policy is a known value
func (p MissingValuePolicy) IsValid() bool {
	return p == MissingValueLenient || p == MissingValueStrict
}

const (
	// DefaultFallbackValue is substituted for missing values in lenient mode
	DefaultFallbackValue = "Sample Value"
	// DefaultCurrency is the currency code printed by formatCurrency
	DefaultCurrency = "SAR"
)

// MissingVariablesError lists every variable that had no value during a strict render
type MissingVariablesError struct {
	Names []string
}

func (e *MissingVariablesError) Error() string {
	return "missing values for template variables: " + strings.Join(e.Names, ", ")
}

// TemplateEngine renders document templates written in the {{variable}} syntax
type TemplateEngine struct {
	policy   MissingValuePolicy
	fallback string
	currency string
	logger   *zap.Logger
}

// TemplateEngineOption configures a TemplateEngine
type TemplateEngineOption func(*TemplateEngine)

// WithMissingValuePolicy sets the missing-value policy
func WithMissingValuePolicy(policy MissingValuePolicy) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if policy.IsValid() {
			e.policy = policy
		}
	}
}

// WithFallbackValue sets the text substituted for missing values in lenient mode
func WithFallbackValue(fallback string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.fallback = fallback
	}
}

// WithCurrency sets the ISO 4217 code printed by formatCurrency.
// Unknown codes are ignored.
func WithCurrency(code string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		unit, err := currency.ParseISO(strings.TrimSpace(code))
		if err != nil {
			e.logger.Warn("ignoring unknown currency code", zap.String("currency", code), zap.Error(err))
			return
		}
		e.currency = unit.String()
	}
}

// WithTemplateLogger sets the logger
func WithTemplateLogger(logger *zap.Logger) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewTemplateEngine creates a new template engine. The default policy is lenient.
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{
		policy:   MissingValueLenient,
		fallback: DefaultFallbackValue,
		currency: DefaultCurrency,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured missing-value policy
func (e *TemplateEngine) Policy() MissingValuePolicy {
	return e.policy
}

// Validate parses content and returns its syntax problems, if any
func (e *TemplateEngine) Validate(content string) []SyntaxProblem {
	_, err := ParseTemplate(content)
	if syntaxErr, ok := err.(*TemplateSyntaxError); ok {
		return syntaxErr.Problems
	}
	return nil
}

// Render parses and executes content against data
func (e *TemplateEngine) Render(ctx context.Context, content string, data map[string]any) (string, error) {
	tmpl, err := ParseTemplate(content)
	if err != nil {
		return "", err
	}
	return e.Execute(ctx, tmpl, data)
}

// Execute runs a parsed template against data
func (e *TemplateEngine) Execute(ctx context.Context, tmpl *Template, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	st := &execState{engine: e, seen: make(map[string]struct{})}
	st.walk(tmpl.nodes, scope{root: data})

	if len(st.missing) > 0 {
		if e.policy == MissingValueStrict {
			return "", &MissingVariablesError{Names: st.missing}
		}
		e.logger.Debug("substituted fallback for missing template values",
			zap.Strings("variables", st.missing),
			zap.String("fallback", e.fallback),
		)
	}

	return st.out.String(), nil
}

// scope is the variable lookup context; inside {{#each}} the current item
// is consulted before the root data.
type scope struct {
	root    map[string]any
	item    any
	itemMap map[string]any
	inEach  bool
}

func (s scope) lookup(name string) (any, bool) {
	if s.inEach {
		if name == "this" {
			return s.item, s.item != nil
		}
		if v, ok := s.itemMap[name]; ok && v != nil {
			return v, true
		}
	}
	if v, ok := s.root[name]; ok && v != nil {
		return v, true
	}
	return nil, false
}

type execState struct {
	engine  *TemplateEngine
	out     strings.Builder
	missing []string
	seen    map[string]struct{}
}

func (st *execState) recordMissing(name string) {
	if _, dup := st.seen[name]; dup {
		return
	}
	st.seen[name] = struct{}{}
	st.missing = append(st.missing, name)
}

func (st *execState) walk(nodes []node, sc scope) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *textNode:
			st.out.WriteString(n.text)

		case *varNode:
			v, ok := sc.lookup(n.name)
			if !ok {
				st.recordMissing(n.name)
				st.out.WriteString(html.EscapeString(st.engine.fallback))
				continue
			}
			st.out.WriteString(escapeValue(n.name, stringify(v)))

		case *callNode:
			v := st.evalCall(n.call, sc)
			st.out.WriteString(html.EscapeString(stringify(v)))

		case *blockNode:
			st.walkBlock(n, sc)
		}
	}
}

func (st *execState) walkBlock(b *blockNode, sc scope) {
	v, _ := sc.lookup(b.name)

	switch b.kind {
	case blockIf:
		if truthy(v) {
			st.walk(b.body, sc)
		}

	case blockEach:
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return
		}
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			st.walk(b.body, scope{
				root:    sc.root,
				item:    item,
				itemMap: asMap(item),
				inEach:  true,
			})
		}
	}
}

func (st *execState) evalCall(c *callExpr, sc scope) any {
	args := make([]any, len(c.args))
	for i, a := range c.args {
		switch {
		case a.call != nil:
			args[i] = st.evalCall(a.call, sc)
		case a.number != "":
			d, err := decimal.NewFromString(a.number)
			if err != nil {
				d = decimal.Zero
			}
			args[i] = d
		default:
			v, ok := sc.lookup(a.ident)
			if !ok {
				st.recordMissing(a.ident)
			}
			args[i] = v
		}
	}
	return helpers[c.name].fn(st.engine, args)
}

type helper struct {
	arity int
	fn    func(e *TemplateEngine, args []any) any
}

var helpers = map[string]helper{
	"formatCurrency": {arity: 1, fn: func(e *TemplateEngine, args []any) any {
		return e.FormatCurrency(toDecimal(args[0]))
	}},
	"multiply": {arity: 2, fn: func(_ *TemplateEngine, args []any) any {
		return toDecimal(args[0]).Mul(toDecimal(args[1]))
	}},
}

// FormatCurrency formats an amount as "SAR 1,234.50"
func (e *TemplateEngine) FormatCurrency(d decimal.Decimal) string {
	return e.currency + " " + formatMoneyRaw(d)
}

// formatMoneyRaw formats a decimal with thousand separators and two decimals
func formatMoneyRaw(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}

	return sign + result.String() + "." + decPart
}

// escapeValue HTML-escapes a substituted value. Image data URLs for
// image-typed variables are emitted as-is.
func escapeValue(name, s string) string {
	if strings.HasPrefix(s, "data:image/") && isImageVariable(name) {
		return s
	}
	return html.EscapeString(s)
}

func isImageVariable(name string) bool {
	if entry, ok := templating.LookupSystemVariable(name); ok {
		return entry.Type == templating.VariableTypeImage
	}
	return templating.InferVariableType(name) == templating.VariableTypeImage
}

// stringify converts a context value into its printed form
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case *decimal.Decimal:
		if val == nil {
			return ""
		}
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// toDecimal converts various types to decimal.Decimal; anything non-numeric is zero
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int32:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float32:
		return decimal.NewFromFloat(float64(val))
	case float64:
		return decimal.NewFromFloat(val)
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// truthy reports whether an {{#if}} block should be rendered
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return val != ""
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case decimal.Decimal:
		return !val.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer:
		return !rv.IsNil()
	}
	return true
}

// asMap exposes the fields of an {{#each}} item. Struct fields are keyed by
// their json tag name, or by the Go field name when untagged.
func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		out := make(map[string]any, rv.NumField())
		structFields(rv, out)
		return out
	}
	return nil
}

func structFields(rv reflect.Value, out map[string]any) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			structFields(rv.Field(i), out)
			continue
		}
		fv := rv.Field(i)
		if !f.IsExported() || !fv.CanInterface() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = fv.Interface()
	}
}
