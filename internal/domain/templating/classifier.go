package templating

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keyword sets for type inference, checked in this order; the first set with a
// substring match wins.
var typeInferenceRules = []struct {
	typ      VariableType
	keywords []string
}{
	{VariableTypeCurrency, []string{"amount", "price", "cost", "total", "subtotal", "tax", "discount", "fee"}},
	{VariableTypeDate, []string{"date", "time", "created", "updated", "expired", "due"}},
	{VariableTypeNumber, []string{"count", "quantity", "number", "id", "percentage", "rate"}},
	{VariableTypeBoolean, []string{"is", "has", "can", "should", "will", "active"}},
	{VariableTypeImage, []string{"image", "photo", "picture", "logo", "qr", "signature"}},
}

// requiredKeywords mark a custom variable as required when contained in its lowercased key
var requiredKeywords = []string{
	"name", "email", "phone", "address", "amount", "total",
	"price", "date", "time", "number", "id", "status",
}

// recommendedCommonKeys are suggested when a template does not use them
var recommendedCommonKeys = map[string]struct{}{
	"currentDate": {},
	"totalAmount": {},
}

// systemCandidateMarkers flag custom keys that look like they should be system variables (case-sensitive)
var systemCandidateMarkers = []string{"Date", "Time", "Amount"}

var upperLetterPattern = regexp.MustCompile(`([A-Z])`)

// AnalyzeTemplateVariables detects the variables used by template text and
// classifies each of them against the company's known variables, the
// template's placeholder declarations and the system catalog.
//
// Known variables are looked up in existing first and then in placeholders;
// a placeholder redefining an existing key replaces it. Unknown tokens become
// system variables when they match the catalog and synthesized custom
// variables otherwise. Classification never fails.
func AnalyzeTemplateVariables(text string, existing []TemplateVariable, placeholders []Placeholder) VariableDetectionResult {
	known := newVariableSet()
	for _, v := range existing {
		known.set(v)
	}
	for _, p := range placeholders {
		known.set(p.ToVariable())
	}

	tokens := DetectVariables(text)
	detected := make([]TemplateVariable, 0, len(tokens))
	var newVars []TemplateVariable

	for _, name := range tokens {
		if v, ok := known.get(name); ok {
			detected = append(detected, v)
			continue
		}
		v := ClassifyVariable(name)
		detected = append(detected, v)
		if v.Category == VariableCategoryCustom {
			newVars = append(newVars, v)
		}
	}

	if newVars == nil {
		newVars = []TemplateVariable{}
	}

	return VariableDetectionResult{
		DetectedVariables: detected,
		ExistingVariables: known.values(),
		NewVariables:      newVars,
		Recommendations:   buildRecommendations(detected),
	}
}

// ClassifyVariable builds a TemplateVariable for a token that is not yet known.
// Catalog keys become system variables; anything else is a custom variable
// whose type, requiredness and label are inferred from its name.
func ClassifyVariable(name string) TemplateVariable {
	if entry, ok := LookupSystemVariable(name); ok {
		return entry.ToVariable()
	}
	return TemplateVariable{
		Key:        name,
		Label:      FormatLabel(name),
		Type:       InferVariableType(name),
		Required:   InferRequired(name),
		Category:   VariableCategoryCustom,
		UsageCount: 0,
	}
}

// InferVariableType guesses a variable type from naming conventions
func InferVariableType(name string) VariableType {
	lower := strings.ToLower(name)
	for _, rule := range typeInferenceRules {
		if containsAny(lower, rule.keywords) {
			return rule.typ
		}
	}
	return VariableTypeText
}

// InferRequired guesses whether a custom variable must be provided
func InferRequired(name string) bool {
	return containsAny(strings.ToLower(name), requiredKeywords)
}

// FormatLabel turns a variable key into a display label.
// Example: "clientFullName" -> "Client Full Name", "due_date" -> "Due date"
func FormatLabel(name string) string {
	label := upperLetterPattern.ReplaceAllString(name, " $1")
	label = strings.ReplaceAll(label, "_", " ")
	label = upperFirst(label)
	return strings.TrimSpace(label)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// buildRecommendations produces the ordered hint list for a set of detected variables
func buildRecommendations(detected []TemplateVariable) []string {
	recommendations := []string{}

	var systemCount, customCount, requiredCount int
	present := make(map[string]struct{}, len(detected))
	var systemCandidates []string

	for _, v := range detected {
		present[v.Key] = struct{}{}
		switch v.Category {
		case VariableCategorySystem:
			systemCount++
		case VariableCategoryCustom:
			customCount++
			if v.Required {
				requiredCount++
			}
			for _, marker := range systemCandidateMarkers {
				if strings.Contains(v.Key, marker) {
					systemCandidates = append(systemCandidates, v.Key)
					break
				}
			}
		}
	}

	if systemCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Found %d system variables that will be auto-populated", systemCount))
	}

	if customCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Found %d custom variables that need user input", customCount))
		if requiredCount > 0 {
			recommendations = append(recommendations,
				fmt.Sprintf("%d variables are marked as required and must be provided", requiredCount))
		}
	}

	var missing []string
	for _, e := range systemCatalog {
		if _, recommended := recommendedCommonKeys[e.Key]; !recommended {
			continue
		}
		if _, ok := present[e.Key]; !ok {
			missing = append(missing, e.Key)
		}
	}
	if len(missing) > 0 {
		recommendations = append(recommendations,
			"Consider adding common variables: "+strings.Join(missing, ", "))
	}

	if len(systemCandidates) > 0 {
		recommendations = append(recommendations,
			"Consider making these system variables: "+strings.Join(systemCandidates, ", "))
	}

	return recommendations
}

// variableSet is an insertion-ordered map of variables keyed by Key.
// Setting an existing key replaces the value but keeps its position.
type variableSet struct {
	order []string
	byKey map[string]TemplateVariable
}

func newVariableSet() *variableSet {
	return &variableSet{byKey: make(map[string]TemplateVariable)}
}

func (s *variableSet) set(v TemplateVariable) {
	if _, ok := s.byKey[v.Key]; !ok {
		s.order = append(s.order, v.Key)
	}
	s.byKey[v.Key] = v
}

// add inserts v only if its key is not present yet
func (s *variableSet) add(v TemplateVariable) {
	if _, ok := s.byKey[v.Key]; ok {
		return
	}
	s.order = append(s.order, v.Key)
	s.byKey[v.Key] = v
}

func (s *variableSet) get(key string) (TemplateVariable, bool) {
	v, ok := s.byKey[key]
	return v, ok
}

func (s *variableSet) values() []TemplateVariable {
	out := make([]TemplateVariable, len(s.order))
	for i, k := range s.order {
		out[i] = s.byKey[k]
	}
	return out
}
