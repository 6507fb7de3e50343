package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// registryFile is the YAML form of a company's variable registry
type registryFile struct {
	Variables    []registryVariable `yaml:"variables"`
	Placeholders []registryVariable `yaml:"placeholders"`
}

type registryVariable struct {
	Key          string `yaml:"key"`
	Label        string `yaml:"label"`
	Type         string `yaml:"type"`
	Required     bool   `yaml:"required"`
	UsageCount   int    `yaml:"usage_count"`
	DefaultValue string `yaml:"default_value"`
}

// analysisReport is what analyze prints
type analysisReport struct {
	Files           []string         `yaml:"files" json:"files"`
	Valid           bool             `yaml:"valid" json:"valid"`
	SyntaxErrors    []string         `yaml:"syntax_errors,omitempty" json:"syntax_errors,omitempty"`
	Detected        []reportVariable `yaml:"detected" json:"detected"`
	New             []reportVariable `yaml:"new" json:"new"`
	Recommendations []string         `yaml:"recommendations,omitempty" json:"recommendations,omitempty"`
}

type reportVariable struct {
	Key      string `yaml:"key" json:"key"`
	Label    string `yaml:"label" json:"label"`
	Type     string `yaml:"type" json:"type"`
	Category string `yaml:"category" json:"category"`
	Required bool   `yaml:"required" json:"required"`
}

func analyzeCmd() *cobra.Command {
	var (
		registryPath string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "analyze <template.html>...",
		Short: "Detect and classify the variables used by templates",
		Long: `Analyze one or more HTML templates, classify every {{variable}} as a
system or custom variable and report the ones missing from the registry.
Results from several files are merged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported output format %q (use yaml or json)", format)
			}

			registry := &registryFile{}
			if registryPath != "" {
				var err error
				if registry, err = loadRegistry(registryPath); err != nil {
					return err
				}
			}

			report, err := analyzeFiles(args, registry)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, report)
		},
	}

	cmd.Flags().StringVarP(&registryPath, "registry", "r", "", "YAML file with known variables and placeholders")
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "output format (yaml, json)")

	return cmd
}

func loadRegistry(path string) (*registryFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	var registry registryFile
	if err := yaml.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &registry, nil
}

func analyzeFiles(paths []string, registry *registryFile) (*analysisReport, error) {
	known := make([]templating.TemplateVariable, 0, len(registry.Variables))
	for _, v := range registry.Variables {
		known = append(known, templating.TemplateVariable{
			Key:        v.Key,
			Label:      v.Label,
			Type:       templating.VariableType(v.Type),
			Required:   v.Required,
			Category:   templating.VariableCategoryCustom,
			UsageCount: v.UsageCount,
		})
	}
	placeholders := make([]templating.Placeholder, 0, len(registry.Placeholders))
	for _, p := range registry.Placeholders {
		placeholders = append(placeholders, templating.Placeholder{
			Key:          p.Key,
			Label:        p.Label,
			Type:         templating.VariableType(p.Type),
			Required:     p.Required,
			DefaultValue: p.DefaultValue,
		})
	}

	engine := printing.NewTemplateEngine()
	report := &analysisReport{Files: paths, Valid: true}
	results := make([]templating.VariableDetectionResult, 0, len(paths))

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		for _, problem := range engine.Validate(string(content)) {
			report.Valid = false
			report.SyntaxErrors = append(report.SyntaxErrors, fmt.Sprintf("%s: %s", path, problem))
		}
		results = append(results, templating.AnalyzeTemplateVariables(string(content), known, placeholders))
	}

	merged := templating.MergeDetections(results...)
	report.Detected = toReportVariables(merged.DetectedVariables)
	report.New = toReportVariables(merged.NewVariables)
	report.Recommendations = merged.Recommendations
	return report, nil
}

func toReportVariables(vars []templating.TemplateVariable) []reportVariable {
	out := make([]reportVariable, len(vars))
	for i, v := range vars {
		out[i] = reportVariable{
			Key:      v.Key,
			Label:    v.Label,
			Type:     string(v.Type),
			Category: string(v.Category),
			Required: v.Required,
		}
	}
	return out
}

func writeReport(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
